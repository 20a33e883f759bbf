// Package conversion implements the base64 conversion engine: input
// acquisition, metadata capture, integrity hashing, and the encode/decode
// transform with lenient-but-bounded decode validation.
package conversion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sammcj/mcp-base64/internal/mimesniff"
	"github.com/sirupsen/logrus"
)

// Engine performs conversions. It holds no mutable state across calls, so a
// single Engine may be shared by concurrent callers.
type Engine struct {
	logger *logrus.Logger

	// maxInputSize bounds acquired input in bytes; 0 means unbounded.
	maxInputSize int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInputSize limits how many input bytes a conversion will accept.
func WithMaxInputSize(limit int64) Option {
	return func(e *Engine) { e.maxInputSize = limit }
}

// NewEngine creates an Engine that logs through the given logger.
func NewEngine(logger *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convert runs a single conversion to completion. It never returns a Go
// error for expected failure modes: filesystem problems, oversized input
// and malformed base64 all come back as a Result with OK=false and a
// human-readable ErrorMessage. ElapsedMillis is measured from entry to
// completion regardless of outcome.
func (e *Engine) Convert(req Request) Result {
	start := time.Now()

	fail := func(msg string) Result {
		e.logger.WithFields(logrus.Fields{
			"kind":      req.Kind,
			"direction": req.Direction,
		}).Debug("Conversion failed: " + msg)
		return Result{
			ErrorMessage:  msg,
			ElapsedMillis: elapsedMillis(start),
		}
	}

	data, meta, err := e.acquire(req)
	if err != nil {
		return fail(err.Error())
	}

	if e.maxInputSize > 0 && int64(len(data)) > e.maxInputSize {
		return fail(fmt.Sprintf("input is %d bytes, which exceeds the configured limit of %d bytes", len(data), e.maxInputSize))
	}

	meta.SizeBytes = int64(len(data))
	meta.ContentHash = hashContent(data)

	var payload []byte
	switch req.Direction {
	case Encode:
		payload = []byte(encodeToString(data, req.WrapColumn))
	case Decode:
		decoded, decodeErr := decodeLenient(string(data))
		if decodeErr != nil {
			return fail(decodeErr.Error())
		}
		payload = decoded
	default:
		return fail(fmt.Sprintf("unknown conversion direction: %q", req.Direction))
	}

	return Result{
		Payload:       payload,
		Metadata:      meta,
		ElapsedMillis: elapsedMillis(start),
		OK:            true,
	}
}

// acquire reads the request's input and collects metadata for it. The
// streaming and in-memory modes share this path: streaming accepts a chunk
// size but still reads the whole input, keeping output byte-identical
// between modes.
func (e *Engine) acquire(req Request) ([]byte, Metadata, error) {
	switch req.Kind {
	case InputPath:
		info, err := os.Stat(req.Path)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("cannot access input file: %v", err)
		}
		if info.IsDir() {
			return nil, Metadata{}, fmt.Errorf("input path is a directory: %s", req.Path)
		}
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("cannot read input file: %v", err)
		}
		modified := info.ModTime()
		// Creation time is not portably available; modification time is the
		// closest stand-in on every platform.
		created := modified
		return data, Metadata{
			Filename: filepath.Base(req.Path),
			MimeType: mimesniff.DetectFile(req.Path),
			Created:  &created,
			Modified: &modified,
		}, nil

	case InputText:
		return []byte(req.Text), Metadata{MimeType: "text/plain"}, nil

	case InputBytes:
		return req.Bytes, Metadata{MimeType: mimesniff.DetectBytes(req.Bytes)}, nil

	default:
		return nil, Metadata{}, fmt.Errorf("unknown input kind: %q", req.Kind)
	}
}

func hashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func elapsedMillis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
