package conversion

import "time"

// InputKind selects how a Request's input fields are interpreted.
type InputKind string

const (
	// InputPath reads the input from a file on disk.
	InputPath InputKind = "path"
	// InputText treats the input as UTF-8 literal text.
	InputText InputKind = "text"
	// InputBytes takes the input as a raw byte buffer.
	InputBytes InputKind = "bytes"
)

// Direction selects the transform a Request performs.
type Direction string

const (
	Encode Direction = "encode"
	Decode Direction = "decode"
)

// Mode selects the execution strategy. Both modes produce byte-identical
// output for the same input; streaming currently reads the whole input
// before transforming, the same as ModeMemory.
type Mode string

const (
	ModeMemory    Mode = "memory"
	ModeStreaming Mode = "streaming"
)

// Request describes a single conversion. Exactly one of Path, Text or Bytes
// is consulted, selected by Kind.
type Request struct {
	Kind      InputKind
	Path      string
	Text      string
	Bytes     []byte
	Direction Direction

	// WrapColumn, when > 0, splits encoded output into fixed-width lines.
	WrapColumn int

	Mode Mode
	// ChunkSize is accepted for streaming mode but does not currently bound
	// memory usage.
	ChunkSize int
}

// Metadata describes the acquired input. It is populated once per
// conversion and not modified afterwards.
type Metadata struct {
	Filename    string
	MimeType    string
	SizeBytes   int64
	Created     *time.Time
	Modified    *time.Time
	ContentHash string
}

// Result is the outcome of a conversion. Expected failures are reported
// here rather than as Go errors: OK is false, ErrorMessage is set, Payload
// is empty and Metadata is zeroed.
type Result struct {
	// Payload holds base64 text for encode, decoded bytes for decode.
	Payload       []byte
	Metadata      Metadata
	ElapsedMillis int64
	OK            bool
	ErrorMessage  string
}
