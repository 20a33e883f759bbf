// Package mimesniff provides best-effort content-type detection. Both
// detection functions are total: any internal failure resolves to a generic
// fallback type rather than an error.
package mimesniff

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FallbackType is returned when detection fails or yields nothing useful.
const FallbackType = "application/octet-stream"

// DetectFile sniffs the content type of the file at path.
func DetectFile(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return FallbackType
	}
	return normalise(mtype.String())
}

// DetectBytes sniffs the content type of an in-memory buffer.
func DetectBytes(data []byte) string {
	return normalise(mimetype.Detect(data).String())
}

// normalise strips charset parameters ("text/plain; charset=utf-8" becomes
// "text/plain") so the result embeds cleanly into data URIs.
func normalise(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return FallbackType
	}
	return mime
}
