package jobmemory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	store := New(time.Minute)
	key := Key{ContentHash: "abc", Format: "json", IncludeMetadata: true}

	_, ok := store.Get(key)
	assert.False(t, ok)

	store.Set(key, "rendered output")

	out, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "rendered output", out)
}

func TestStoreKeysAreDistinct(t *testing.T) {
	store := New(time.Minute)
	store.Set(Key{ContentHash: "abc", Format: "json"}, "as json")

	_, ok := store.Get(Key{ContentHash: "abc", Format: "xml"})
	assert.False(t, ok, "different format must miss")

	_, ok = store.Get(Key{ContentHash: "abc", Format: "json", DataURI: true})
	assert.False(t, ok, "different options must miss")

	_, ok = store.Get(Key{ContentHash: "def", Format: "json"})
	assert.False(t, ok, "different content must miss")

	store.Set(Key{Direction: "encode", ContentHash: "abc", Format: "raw"}, "encoded")
	_, ok = store.Get(Key{Direction: "decode", ContentHash: "abc", Format: "raw"})
	assert.False(t, ok, "different direction must miss")
}

func TestStoreExpiry(t *testing.T) {
	store := New(time.Millisecond)
	key := Key{ContentHash: "abc", Format: "raw"}
	store.Set(key, "ephemeral")

	time.Sleep(5 * time.Millisecond)

	_, ok := store.Get(key)
	assert.False(t, ok)
}

func TestFromSharedReturnsSameStore(t *testing.T) {
	cache := &sync.Map{}

	first := FromShared(cache, time.Minute)
	first.Set(Key{ContentHash: "abc", Format: "raw"}, "kept")

	second := FromShared(cache, time.Minute)
	out, ok := second.Get(Key{ContentHash: "abc", Format: "raw"})
	require.True(t, ok)
	assert.Equal(t, "kept", out)
}
