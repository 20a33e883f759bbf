package conversion

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
)

// encodeToString produces canonical base64 for src, split into fixed-width
// lines of wrapColumn characters when wrapColumn > 0. The final line may be
// shorter and carries no trailing newline.
func encodeToString(src []byte, wrapColumn int) string {
	encoded := base64.StdEncoding.EncodeToString(src)
	if wrapColumn > 0 {
		encoded = WrapText(encoded, wrapColumn)
	}
	return encoded
}

// WrapText chunks s left-to-right into lines of exactly width characters,
// joined by single newlines. Existing newlines in s are removed first so
// re-wrapping already-wrapped content is stable.
func WrapText(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\n", "")
	if len(s) <= width {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/width)
	for start := 0; start < len(s); start += width {
		end := start + width
		if end > len(s) {
			end = len(s)
		}
		if start > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s[start:end])
	}
	return b.String()
}

// decodeLenient decodes base64 input under a deliberately permissive policy:
// whitespace anywhere is ignored and missing or short trailing padding is
// tolerated, but the alphabet is strict and padding may only appear at the
// very end. Callers frequently hand-edit or truncate base64, so strict RFC
// 4648 length enforcement would reject too much useful input, while foreign
// characters or mid-string padding would silently corrupt data.
func decodeLenient(input string) ([]byte, error) {
	cleaned := stripWhitespace(input)

	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		if !isBase64Char(c) && c != '=' {
			return nil, fmt.Errorf("invalid base64 character %q at position %d", string(c), i)
		}
	}

	// Padding must be a contiguous run at the end, at most two characters.
	trimmed := cleaned
	if idx := strings.IndexByte(cleaned, '='); idx >= 0 {
		padding := cleaned[idx:]
		if strings.Trim(padding, "=") != "" {
			return nil, fmt.Errorf("misplaced base64 padding at position %d", idx)
		}
		if len(padding) > 2 {
			return nil, fmt.Errorf("too much base64 padding (%d '=' characters)", len(padding))
		}
		trimmed = cleaned[:idx]
	}

	// A 4n+1 length cannot be produced by any byte sequence, padded or not.
	if len(trimmed)%4 == 1 {
		return nil, fmt.Errorf("truncated base64 input: length %d is not decodable", len(trimmed))
	}

	decoded, err := base64.RawStdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("base64 decode failed: %w", err)
	}
	return decoded, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isBase64Char(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '+' || c == '/':
		return true
	}
	return false
}
