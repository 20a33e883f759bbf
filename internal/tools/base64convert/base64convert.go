// Package base64convert exposes the conversion engine and output formatter
// as a single MCP tool.
package base64convert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-base64/internal/config"
	"github.com/sammcj/mcp-base64/internal/conversion"
	"github.com/sammcj/mcp-base64/internal/format"
	"github.com/sammcj/mcp-base64/internal/jobmemory"
	"github.com/sammcj/mcp-base64/internal/registry"
	"github.com/sammcj/mcp-base64/internal/tools"
	"github.com/sirupsen/logrus"
)

// Base64Convert implements the tools.Tool interface for base64 encoding and
// decoding with formatted output.
type Base64Convert struct{}

// init registers the tool with the registry
func init() {
	registry.Register(&Base64Convert{})
}

// Definition returns the tool's definition for MCP registration
func (t *Base64Convert) Definition() mcp.Tool {
	return mcp.NewTool(
		"base64_convert",
		mcp.WithDescription("Convert content to or from base64 and render the result as raw text, JSON, JS/TS modules, CSS, HTML, XML, YAML, or Markdown. Input comes from a file path or inline text."),
		mcp.WithString("action",
			mcp.Description("Transform to perform"),
			mcp.Enum("encode", "decode"),
			mcp.Required(),
		),
		mcp.WithString("path",
			mcp.Description("Path to the input file (mutually exclusive with 'text')"),
		),
		mcp.WithString("text",
			mcp.Description("Inline input: plain text to encode, or base64 text to decode (mutually exclusive with 'path')"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: raw, json, js/javascript, ts/typescript, css, html, xml, yaml/yml, markdown/md (default: raw)"),
		),
		mcp.WithNumber("wrap_column",
			mcp.Description("Wrap encoded output into fixed-width lines of this many characters"),
		),
		mcp.WithBoolean("data_uri",
			mcp.Description("Emit the content as a data: URI when the MIME type is known"),
		),
		mcp.WithBoolean("include_metadata",
			mcp.Description("Include file metadata (name, MIME type, size, hash, timestamps) in the output"),
		),
		mcp.WithString("mode",
			mcp.Description("Execution mode (default: memory). Both modes produce identical output"),
			mcp.Enum("memory", "streaming"),
		),
		mcp.WithNumber("chunk_size",
			mcp.Description("Chunk size hint for streaming mode"),
		),
	)
}

// Execute executes the tool's logic
func (t *Base64Convert) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	req, err := parseRequest(args)
	if err != nil {
		return nil, err
	}

	formatName, opts, err := parseRenderArgs(args)
	if err != nil {
		return nil, err
	}

	cfg := config.Get()
	if req.WrapColumn == 0 {
		req.WrapColumn = cfg.DefaultWrapColumn
	}

	logger.WithFields(logrus.Fields{
		"action": req.Direction,
		"kind":   req.Kind,
		"format": formatName,
		"mode":   req.Mode,
	}).Info("Executing base64_convert")

	engine := conversion.NewEngine(logger, conversion.WithMaxInputSize(cfg.MaxInputSizeBytes()))
	result := engine.Convert(req)

	if !result.OK {
		return mcp.NewToolResultError(fmt.Sprintf("%s\n\n%s", result.ErrorMessage, suggestionFor(req, result.ErrorMessage))), nil
	}

	memory := jobmemory.FromShared(cache, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
	key := jobmemory.Key{
		Direction:       string(req.Direction),
		ContentHash:     result.Metadata.ContentHash,
		Format:          strings.ToLower(formatName),
		WrapColumn:      opts.WrapColumn,
		DataURI:         opts.DataURI,
		IncludeMetadata: opts.IncludeMetadata,
	}
	if rendered, ok := memory.Get(key); ok {
		logger.WithField("hash", result.Metadata.ContentHash).Debug("Job memory hit")
		return mcp.NewToolResultText(rendered), nil
	}

	rendered, err := format.Render(result, formatName, opts)
	if err != nil {
		return nil, err
	}

	memory.Set(key, rendered)
	return mcp.NewToolResultText(rendered), nil
}

// parseRequest builds a conversion request from tool arguments.
func parseRequest(args map[string]any) (conversion.Request, error) {
	var req conversion.Request

	action, ok := args["action"].(string)
	if !ok || action == "" {
		return req, fmt.Errorf("'action' parameter is required and must be 'encode' or 'decode'")
	}
	switch action {
	case "encode":
		req.Direction = conversion.Encode
	case "decode":
		req.Direction = conversion.Decode
	default:
		return req, fmt.Errorf("invalid action %q: must be 'encode' or 'decode'", action)
	}

	path, _ := args["path"].(string)
	text, hasText := args["text"]
	switch {
	case path != "" && hasText:
		return req, fmt.Errorf("'path' and 'text' are mutually exclusive")
	case path != "":
		req.Kind = conversion.InputPath
		req.Path = path
	case hasText:
		textStr, ok := text.(string)
		if !ok {
			return req, fmt.Errorf("'text' must be a string")
		}
		req.Kind = conversion.InputText
		req.Text = textStr
	default:
		return req, fmt.Errorf("either 'path' or 'text' is required")
	}

	wrap, err := intArg(args, "wrap_column")
	if err != nil {
		return req, err
	}
	if wrap < 0 {
		return req, fmt.Errorf("'wrap_column' must be a positive integer")
	}
	req.WrapColumn = wrap

	req.Mode = conversion.ModeMemory
	if mode, ok := args["mode"].(string); ok && mode != "" {
		switch mode {
		case "memory":
			req.Mode = conversion.ModeMemory
		case "streaming":
			req.Mode = conversion.ModeStreaming
		default:
			return req, fmt.Errorf("invalid mode %q: must be 'memory' or 'streaming'", mode)
		}
	}

	chunkSize, err := intArg(args, "chunk_size")
	if err != nil {
		return req, err
	}
	req.ChunkSize = chunkSize

	return req, nil
}

// parseRenderArgs extracts the format name and rendering options.
func parseRenderArgs(args map[string]any) (string, format.Options, error) {
	formatName := "raw"
	if name, ok := args["format"].(string); ok && name != "" {
		formatName = name
	}

	opts := format.Options{}
	wrap, err := intArg(args, "wrap_column")
	if err != nil {
		return "", opts, err
	}
	opts.WrapColumn = wrap

	if dataURI, ok := args["data_uri"].(bool); ok {
		opts.DataURI = dataURI
	}
	if includeMeta, ok := args["include_metadata"].(bool); ok {
		opts.IncludeMetadata = includeMeta
	}
	return formatName, opts, nil
}

// intArg reads an integer argument that may arrive as float64 (JSON), int,
// or int64 (CLI coercion). Absent values return zero.
func intArg(args map[string]any, name string) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("'%s' must be a number, got %T", name, raw)
	}
}

// suggestionFor picks a hint to append after a conversion failure message,
// based on what actually failed rather than just the request shape.
func suggestionFor(req conversion.Request, errMsg string) string {
	switch {
	case strings.Contains(errMsg, "exceeds the configured limit"):
		return "Use a smaller input, or raise max_input_size_kb in the configuration file."
	case req.Direction == conversion.Decode && strings.Contains(errMsg, "base64"):
		return "Check that the input is base64: only A-Z, a-z, 0-9, '+' and '/' are allowed, with '=' padding only at the very end."
	case req.Kind == conversion.InputPath:
		return "Check that the file exists and is readable."
	default:
		return "Check the input parameters and try again."
	}
}

// ProvideExtendedInfo implements the ExtendedHelpProvider interface
func (t *Base64Convert) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		WhenToUse:    "Use when embedding binary or text content into source files, markup, or config (base64 constants, data URIs), or when decoding base64 received from other tools. Decoding is tolerant of missing padding and stray whitespace.",
		WhenNotToUse: "Don't use for compression, encryption, or diffing content - base64 is an encoding, not a security or size measure.",
		CommonPatterns: []string{
			"Encode a file as a TS module: {\"action\": \"encode\", \"path\": \"./logo.png\", \"format\": \"ts\", \"include_metadata\": true}",
			"Produce a data URI for markup: {\"action\": \"encode\", \"path\": \"./logo.png\", \"data_uri\": true}",
			"Decode hand-edited base64: {\"action\": \"decode\", \"text\": \"SGVsbG8\"} (missing padding is fine)",
			"MIME-style wrapped output: {\"action\": \"encode\", \"path\": \"./doc.pdf\", \"wrap_column\": 76}",
		},
		ParameterDetails: map[string]string{
			"action":           "Either 'encode' (bytes to base64 text) or 'decode' (base64 text to bytes).",
			"path":             "File to read. Size, timestamps and a sniffed MIME type are captured as metadata.",
			"text":             "Inline input. For encode this is UTF-8 text (MIME type text/plain); for decode it is the base64 to decode.",
			"format":           "Output template. Synonyms accepted: js/javascript, ts/typescript, yaml/yml, markdown/md. Names are case-insensitive.",
			"wrap_column":      "Positive line width for the encoded output. yaml and markdown formats always wrap content at 76 columns regardless.",
			"data_uri":         "Prefixes the content with data:<mime>;base64, when a MIME type is known; otherwise the content is left as-is.",
			"include_metadata": "Adds filename, MIME type, size, hash and timestamps to formats that support a metadata block.",
			"mode":             "'memory' or 'streaming'. Output is byte-identical either way.",
			"chunk_size":       "Accepted for streaming mode; does not change the output.",
		},
		Examples: []tools.ToolExample{
			{
				Description:    "Encode text and get JSON output",
				Arguments:      map[string]any{"action": "encode", "text": "Hello, World!", "format": "json"},
				ExpectedResult: "{\n  \"content\": \"SGVsbG8sIFdvcmxkIQ==\",\n  \"length\": 20\n}",
			},
			{
				Description:    "Decode base64 with missing padding",
				Arguments:      map[string]any{"action": "decode", "text": "SGVsbG8"},
				ExpectedResult: "Hello",
			},
			{
				Description: "Encode a file as an HTML document with metadata",
				Arguments:   map[string]any{"action": "encode", "path": "/tmp/report.pdf", "format": "html", "include_metadata": true},
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Decode fails with 'invalid base64 character'",
				Solution: "The input contains a character outside A-Za-z0-9+/=. Remove any markup or punctuation around the base64 before decoding; whitespace is fine and is ignored.",
			},
			{
				Problem:  "Decode fails with 'too much base64 padding'",
				Solution: "More than two trailing '=' characters were found. Trim the extra padding; one or two trailing '=' (or none) is accepted.",
			},
			{
				Problem:  "data_uri is set but the output has no data: prefix",
				Solution: "No MIME type could be determined for the input. File inputs are sniffed; inline text is text/plain. The content is left unmodified rather than emitting a malformed URI.",
			},
			{
				Problem:  "Error about an unsupported output format",
				Solution: "Check the format name against: raw, json, js, javascript, ts, typescript, css, html, xml, yaml, yml, markdown, md.",
			},
		},
	}
}
