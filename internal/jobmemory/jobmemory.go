// Package jobmemory memoises rendered conversion output keyed by content
// checksum, format and rendering options, so repeated tool calls over the
// same content skip the transform and render steps.
package jobmemory

import (
	"sync"
	"time"
)

// Key identifies a rendered artefact. Two conversions with the same
// direction, content hash, format and options produce identical output,
// which is what makes the memoisation safe. The content hash alone is not
// enough: it covers the acquired input bytes, and encoding and decoding the
// same input yield different results.
type Key struct {
	Direction       string
	ContentHash     string
	Format          string
	WrapColumn      int
	DataURI         bool
	IncludeMetadata bool
}

// Store is an in-memory TTL cache of rendered output.
type Store struct {
	rendered map[Key]string
	times    map[Key]time.Time
	ttl      time.Duration
	mu       sync.RWMutex
}

// New creates a Store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		rendered: make(map[Key]string),
		times:    make(map[Key]time.Time),
		ttl:      ttl,
	}
}

// Get returns the memoised rendering for key, if present and not expired.
func (s *Store) Get(key Key) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, exists := s.rendered[key]
	if !exists {
		return "", false
	}
	if time.Since(s.times[key]) > s.ttl {
		return "", false
	}
	return out, true
}

// Set memoises a rendering for key.
func (s *Store) Set(key Key, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rendered[key] = output
	s.times[key] = time.Now()
}

// sharedCacheKey is where FromShared parks the Store inside the registry's
// shared sync.Map.
const sharedCacheKey = "base64:jobmemory"

// FromShared returns the job-memory store held in the shared tool cache,
// creating it on first use.
func FromShared(cache *sync.Map, ttl time.Duration) *Store {
	if existing, ok := cache.Load(sharedCacheKey); ok {
		if store, ok := existing.(*Store); ok {
			return store
		}
	}
	store := New(ttl)
	actual, _ := cache.LoadOrStore(sharedCacheKey, store)
	if existing, ok := actual.(*Store); ok {
		return existing
	}
	return store
}
