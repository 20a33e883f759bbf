package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sammcj/mcp-base64/internal/conversion"
)

// yamlWrapColumn is the fixed wrap width used by the yaml and markdown
// templates, independent of the caller's wrap column.
const yamlWrapColumn = 76

func renderRaw(ctx renderContext) string {
	return ctx.Content
}

type jsonMetadata struct {
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash,omitempty"`
}

func renderJSON(ctx renderContext) string {
	payload := struct {
		Content  string        `json:"content"`
		Length   int           `json:"length"`
		Metadata *jsonMetadata `json:"metadata,omitempty"`
	}{
		Content: ctx.Content,
		Length:  len(ctx.Content),
	}
	if ctx.Opts.IncludeMetadata {
		payload.Metadata = &jsonMetadata{
			Filename: ctx.Meta.Filename,
			MimeType: ctx.Meta.MimeType,
			Created:  formatTime(ctx.Meta.Created),
			Modified: formatTime(ctx.Meta.Modified),
			Size:     ctx.Meta.SizeBytes,
			Hash:     ctx.Meta.ContentHash,
		}
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Marshalling a struct of strings and ints cannot fail; keep the
		// contract of structure-always-emitted anyway.
		return `{"content": ""}`
	}
	return string(out)
}

func renderJS(ctx renderContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const encodedContent = \"%s\";\n", escapeJS(ctx.Content))
	if ctx.Opts.IncludeMetadata {
		b.WriteString("\nconst contentMetadata = {\n")
		writeJSMetadataFields(&b, ctx.Meta)
		b.WriteString("};\n")
		b.WriteString("\nmodule.exports = { encodedContent, contentMetadata };\n")
	} else {
		b.WriteString("\nmodule.exports = { encodedContent };\n")
	}
	return b.String()
}

func renderTS(ctx renderContext) string {
	var b strings.Builder
	if ctx.Opts.IncludeMetadata {
		b.WriteString("export interface ContentMetadata {\n")
		b.WriteString("  filename?: string;\n")
		b.WriteString("  mimeType?: string;\n")
		b.WriteString("  created?: string;\n")
		b.WriteString("  modified?: string;\n")
		b.WriteString("  hash?: string;\n")
		b.WriteString("  size: number;\n")
		b.WriteString("}\n\n")
	}
	fmt.Fprintf(&b, "export const encodedContent: string = \"%s\";\n", escapeJS(ctx.Content))
	if ctx.Opts.IncludeMetadata {
		b.WriteString("\nexport const contentMetadata: ContentMetadata = {\n")
		writeJSMetadataFields(&b, ctx.Meta)
		b.WriteString("};\n")
	}
	return b.String()
}

func writeJSMetadataFields(b *strings.Builder, meta conversion.Metadata) {
	if meta.Filename != "" {
		fmt.Fprintf(b, "  filename: \"%s\",\n", escapeJS(meta.Filename))
	}
	if meta.MimeType != "" {
		fmt.Fprintf(b, "  mimeType: \"%s\",\n", meta.MimeType)
	}
	if created := formatTime(meta.Created); created != "" {
		fmt.Fprintf(b, "  created: \"%s\",\n", created)
	}
	if modified := formatTime(meta.Modified); modified != "" {
		fmt.Fprintf(b, "  modified: \"%s\",\n", modified)
	}
	if meta.ContentHash != "" {
		fmt.Fprintf(b, "  hash: \"%s\",\n", meta.ContentHash)
	}
	fmt.Fprintf(b, "  size: %d,\n", meta.SizeBytes)
}

func renderCSS(ctx renderContext) string {
	var b strings.Builder
	b.WriteString(".encoded-content {\n")
	fmt.Fprintf(&b, "  --encoded-content: \"%s\";\n", escapeCSS(ctx.Content))
	b.WriteString("}\n\n")
	b.WriteString(".encoded-content::after {\n")
	b.WriteString("  content: var(--encoded-content);\n")
	b.WriteString("}\n")
	return b.String()
}

func renderHTML(ctx renderContext) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  <title>Encoded Content</title>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "  <div id=\"encoded-content\" data-content=\"%s\"></div>\n", escapeHTML(ctx.Content))
	if ctx.Opts.IncludeMetadata {
		b.WriteString("  <dl class=\"metadata\">\n")
		if ctx.Meta.Filename != "" {
			fmt.Fprintf(&b, "    <dt>Filename</dt><dd>%s</dd>\n", escapeHTML(ctx.Meta.Filename))
		}
		if ctx.Meta.MimeType != "" {
			fmt.Fprintf(&b, "    <dt>MIME type</dt><dd>%s</dd>\n", escapeHTML(ctx.Meta.MimeType))
		}
		fmt.Fprintf(&b, "    <dt>Size</dt><dd>%d bytes</dd>\n", ctx.Meta.SizeBytes)
		b.WriteString("  </dl>\n")
	}
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

func renderXML(ctx renderContext) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<base64>\n")
	fmt.Fprintf(&b, "  <content>%s</content>\n", escapeXML(ctx.Content))
	if ctx.Opts.IncludeMetadata {
		b.WriteString("  <metadata>\n")
		if ctx.Meta.Filename != "" {
			fmt.Fprintf(&b, "    <filename>%s</filename>\n", escapeXML(ctx.Meta.Filename))
		}
		if ctx.Meta.MimeType != "" {
			fmt.Fprintf(&b, "    <mimeType>%s</mimeType>\n", escapeXML(ctx.Meta.MimeType))
		}
		fmt.Fprintf(&b, "    <size>%d</size>\n", ctx.Meta.SizeBytes)
		if ctx.Meta.ContentHash != "" {
			fmt.Fprintf(&b, "    <hash>%s</hash>\n", ctx.Meta.ContentHash)
		}
		b.WriteString("  </metadata>\n")
	}
	b.WriteString("</base64>\n")
	return b.String()
}

func renderYAML(ctx renderContext) string {
	var b strings.Builder
	if ctx.Content == "" {
		b.WriteString("content: \"\"\n")
	} else {
		b.WriteString("content: |-\n")
		for _, line := range strings.Split(conversion.WrapText(ctx.Content, yamlWrapColumn), "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if ctx.Opts.IncludeMetadata {
		b.WriteString("metadata:\n")
		if ctx.Meta.Filename != "" {
			fmt.Fprintf(&b, "  filename: %q\n", ctx.Meta.Filename)
		}
		if ctx.Meta.MimeType != "" {
			fmt.Fprintf(&b, "  mimeType: %q\n", ctx.Meta.MimeType)
		}
		if created := formatTime(ctx.Meta.Created); created != "" {
			fmt.Fprintf(&b, "  created: %q\n", created)
		}
		if modified := formatTime(ctx.Meta.Modified); modified != "" {
			fmt.Fprintf(&b, "  modified: %q\n", modified)
		}
		fmt.Fprintf(&b, "  size: %d\n", ctx.Meta.SizeBytes)
		if ctx.Meta.ContentHash != "" {
			fmt.Fprintf(&b, "  hash: %q\n", ctx.Meta.ContentHash)
		}
	}
	return b.String()
}

func renderMarkdown(ctx renderContext) string {
	var b strings.Builder
	b.WriteString("# Base64 Content\n\n")
	if ctx.Meta.Filename != "" {
		fmt.Fprintf(&b, "## %s\n\n", ctx.Meta.Filename)
	}
	b.WriteString("```\n")
	if ctx.Content != "" {
		b.WriteString(conversion.WrapText(ctx.Content, yamlWrapColumn))
		b.WriteByte('\n')
	}
	b.WriteString("```\n")
	if ctx.Opts.IncludeMetadata {
		b.WriteByte('\n')
		if ctx.Meta.Filename != "" {
			fmt.Fprintf(&b, "- **Filename**: %s\n", ctx.Meta.Filename)
		}
		if ctx.Meta.MimeType != "" {
			fmt.Fprintf(&b, "- **MIME type**: %s\n", ctx.Meta.MimeType)
		}
		fmt.Fprintf(&b, "- **Size**: %d bytes\n", ctx.Meta.SizeBytes)
		if ctx.Meta.ContentHash != "" {
			fmt.Fprintf(&b, "- **Hash**: %s\n", ctx.Meta.ContentHash)
		}
		fmt.Fprintf(&b, "- **Processing time**: %d ms\n", ctx.Elapsed)
	}
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
