// Package format renders a conversion result into one of several textual
// representations. Formats are held in a registry keyed by identifier, so
// adding a format is a single registration rather than a switch branch.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sammcj/mcp-base64/internal/conversion"
)

// Options are pure rendering inputs; nothing here persists between calls.
type Options struct {
	// WrapColumn, when > 0, re-wraps the content into fixed-width lines
	// before the format template is applied.
	WrapColumn int
	// DataURI rewrites the content to a data: URI when the metadata carries
	// a MIME type. Without a MIME type the content is left untouched.
	DataURI bool
	// IncludeMetadata adds the format's metadata block to the output.
	IncludeMetadata bool
}

// UnsupportedFormatError reports a format name that matches no registered
// format. It signals a caller programming error, unlike data-level failures
// which the conversion engine reports inside its result.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %q", e.Name)
}

// renderContext is what a format template receives: pre-processed content
// plus the (read-only) conversion result it came from.
type renderContext struct {
	Content string
	Meta    conversion.Metadata
	Elapsed int64
	Opts    Options
}

type descriptor struct {
	// canonical is the primary name, used in Names listings.
	canonical string
	render    func(renderContext) string
}

var formats = make(map[string]*descriptor)

func register(d *descriptor, names ...string) {
	for _, name := range names {
		formats[name] = d
	}
}

func init() {
	register(&descriptor{canonical: "raw", render: renderRaw}, "raw")
	register(&descriptor{canonical: "json", render: renderJSON}, "json")
	register(&descriptor{canonical: "js", render: renderJS}, "js", "javascript")
	register(&descriptor{canonical: "ts", render: renderTS}, "ts", "typescript")
	register(&descriptor{canonical: "css", render: renderCSS}, "css")
	register(&descriptor{canonical: "html", render: renderHTML}, "html")
	register(&descriptor{canonical: "xml", render: renderXML}, "xml")
	register(&descriptor{canonical: "yaml", render: renderYAML}, "yaml", "yml")
	register(&descriptor{canonical: "markdown", render: renderMarkdown}, "markdown", "md")
}

// Names returns the canonical format names, sorted.
func Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range formats {
		if !seen[d.canonical] {
			seen[d.canonical] = true
			names = append(names, d.canonical)
		}
	}
	sort.Strings(names)
	return names
}

// Synonyms returns every accepted name for the given canonical format.
func Synonyms(canonical string) []string {
	var names []string
	for name, d := range formats {
		if d.canonical == canonical {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Render produces the textual artefact for a conversion result. Format
// names are matched case-insensitively. The result is never mutated. Empty
// content degrades to the empty string with the format structure intact.
func Render(result conversion.Result, formatName string, opts Options) (string, error) {
	d, ok := formats[strings.ToLower(strings.TrimSpace(formatName))]
	if !ok {
		return "", &UnsupportedFormatError{Name: formatName}
	}

	content := string(result.Payload)
	if opts.WrapColumn > 0 {
		content = conversion.WrapText(content, opts.WrapColumn)
	}
	if opts.DataURI && result.Metadata.MimeType != "" {
		content = fmt.Sprintf("data:%s;base64,%s", result.Metadata.MimeType, content)
	}

	return d.render(renderContext{
		Content: content,
		Meta:    result.Metadata,
		Elapsed: result.ElapsedMillis,
		Opts:    opts,
	}), nil
}
