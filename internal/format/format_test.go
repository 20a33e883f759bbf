package format_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sammcj/mcp-base64/internal/conversion"
	"github.com/sammcj/mcp-base64/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(content string) conversion.Result {
	modified := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return conversion.Result{
		Payload: []byte(content),
		Metadata: conversion.Metadata{
			Filename:    "sample.txt",
			MimeType:    "text/plain",
			SizeBytes:   int64(len(content)),
			Modified:    &modified,
			Created:     &modified,
			ContentHash: "abc123",
		},
		ElapsedMillis: 4,
		OK:            true,
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := format.Render(sampleResult("x"), "toml", format.Options{})
	require.Error(t, err)

	var unsupported *format.UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "toml", unsupported.Name)
	assert.Contains(t, err.Error(), "toml")
}

func TestRenderCaseInsensitiveNames(t *testing.T) {
	names := []string{
		"raw", "RAW", "Raw",
		"json", "JSON",
		"js", "JS", "javascript", "JavaScript",
		"ts", "typescript", "TypeScript",
		"css", "CSS",
		"html", "HTML",
		"xml", "XML",
		"yaml", "YAML", "yml", "YML",
		"markdown", "Markdown", "md", "MD",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			out, err := format.Render(sampleResult("SGVsbG8="), name, format.Options{})
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestSynonymsProduceIdenticalOutput(t *testing.T) {
	pairs := [][2]string{
		{"js", "javascript"},
		{"ts", "typescript"},
		{"yaml", "yml"},
		{"markdown", "md"},
	}

	for _, pair := range pairs {
		a, err := format.Render(sampleResult("SGVsbG8="), pair[0], format.Options{IncludeMetadata: true})
		require.NoError(t, err)
		b, err := format.Render(sampleResult("SGVsbG8="), pair[1], format.Options{IncludeMetadata: true})
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s vs %s", pair[0], pair[1])
	}
}

func TestJSEscaping(t *testing.T) {
	content := "say \"hi\" \\ and\nbye"

	for _, name := range []string{"js", "ts"} {
		out, err := format.Render(sampleResult(content), name, format.Options{})
		require.NoError(t, err)

		assert.Contains(t, out, `\"hi\"`)
		assert.Contains(t, out, `\\`)
		assert.Contains(t, out, `\n`)

		// The constant must remain a single-line string literal
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, `= "`) {
				assert.True(t, strings.HasSuffix(line, `";`), "literal not closed on one line: %q", line)
			}
		}
	}
}

func TestCSSEscaping(t *testing.T) {
	out, err := format.Render(sampleResult(`back\slash "quoted"`), "css", format.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `back\\slash`)
	assert.Contains(t, out, `\"quoted\"`)
	assert.Contains(t, out, "--encoded-content")
	assert.Contains(t, out, "content: var(--encoded-content);")
}

func TestHTMLEscaping(t *testing.T) {
	out, err := format.Render(sampleResult(`<b>&"'`), "html", format.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;&amp;&quot;&#39;")
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.NotContains(t, out, `data-content="<`)
}

func TestXMLEscaping(t *testing.T) {
	out, err := format.Render(sampleResult(`<tag>&'`), "xml", format.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;tag&gt;&amp;&apos;")
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
}

func TestJSONShape(t *testing.T) {
	out, err := format.Render(sampleResult("SGVsbG8="), "json", format.Options{})
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "SGVsbG8=", parsed["content"])
	assert.Equal(t, float64(8), parsed["length"])
	assert.NotContains(t, parsed, "metadata")
}

func TestJSONWithMetadata(t *testing.T) {
	out, err := format.Render(sampleResult("SGVsbG8="), "json", format.Options{IncludeMetadata: true})
	require.NoError(t, err)

	var parsed struct {
		Content  string `json:"content"`
		Length   int    `json:"length"`
		Metadata struct {
			Filename string `json:"filename"`
			MimeType string `json:"mimeType"`
			Size     int64  `json:"size"`
			Hash     string `json:"hash"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "sample.txt", parsed.Metadata.Filename)
	assert.Equal(t, "text/plain", parsed.Metadata.MimeType)
	assert.Equal(t, int64(8), parsed.Metadata.Size)
	assert.Equal(t, "abc123", parsed.Metadata.Hash)
}

func TestDataURI(t *testing.T) {
	out, err := format.Render(sampleResult("SGVsbG8="), "raw", format.Options{DataURI: true})
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,SGVsbG8=", out)
}

func TestDataURIWithoutMimeType(t *testing.T) {
	result := sampleResult("SGVsbG8=")
	result.Metadata.MimeType = ""

	out, err := format.Render(result, "raw", format.Options{DataURI: true})
	require.NoError(t, err)
	// No malformed prefix: content is left unmodified
	assert.Equal(t, "SGVsbG8=", out)
}

func TestRenderWrapColumn(t *testing.T) {
	content := strings.Repeat("Q", 200)
	out, err := format.Render(sampleResult(content), "raw", format.Options{WrapColumn: 50})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	for i, line := range lines[:len(lines)-1] {
		assert.Len(t, line, 50, "line %d", i)
	}
}

func TestEmptyContentDegradesGracefully(t *testing.T) {
	empty := conversion.Result{OK: true}

	for _, name := range format.Names() {
		t.Run(name, func(t *testing.T) {
			out, err := format.Render(empty, name, format.Options{IncludeMetadata: true})
			require.NoError(t, err)
			if name == "raw" {
				assert.Empty(t, out)
			} else {
				assert.NotEmpty(t, out)
			}
		})
	}
}

func TestYAMLBlockScalarWrapsAt76(t *testing.T) {
	content := strings.Repeat("Y", 300)
	// Caller wrap column is ignored by the yaml template
	out, err := format.Render(sampleResult(content), "yaml", format.Options{WrapColumn: 20})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "content: |-\n"))

	var scalarLines []string
	for _, line := range strings.Split(out, "\n")[1:] {
		if !strings.HasPrefix(line, "  ") || strings.Contains(line, ":") {
			break
		}
		scalarLines = append(scalarLines, line)
	}
	require.NotEmpty(t, scalarLines)
	for i, line := range scalarLines[:len(scalarLines)-1] {
		assert.Len(t, line, 78, "line %d", i) // 76 + two-space indent
	}
}

func TestMarkdownStructure(t *testing.T) {
	out, err := format.Render(sampleResult("SGVsbG8="), "markdown", format.Options{IncludeMetadata: true})
	require.NoError(t, err)

	assert.Contains(t, out, "# Base64 Content")
	assert.Contains(t, out, "## sample.txt")
	assert.Contains(t, out, "```\nSGVsbG8=\n```")
	assert.Contains(t, out, "- **Size**: 8 bytes")
	assert.Contains(t, out, "- **Processing time**: 4 ms")
}

func TestNamesSorted(t *testing.T) {
	names := format.Names()
	assert.Equal(t, []string{"css", "html", "js", "json", "markdown", "raw", "ts", "xml", "yaml"}, names)
}
