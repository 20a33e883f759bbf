package format

import "strings"

// escapeJS escapes a string for embedding in a double-quoted JS/TS string
// literal. Backslashes are replaced first so the quote and newline escapes
// are not themselves re-escaped.
func escapeJS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return s
}

// escapeCSS escapes a string for a double-quoted CSS string value.
func escapeCSS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

func escapeXML(s string) string { return xmlEscaper.Replace(s) }
