package service

import (
	"strings"
	"unicode/utf8"
)

// sanitizeUTF8 drops invalid UTF-8 bytes and NUL characters, which
// PostgreSQL rejects in text columns, and trims surrounding space.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) {
		return strings.TrimSpace(s)
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if (r == utf8.RuneError && size == 1) || r == 0 {
			s = s[size:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return strings.TrimSpace(result.String())
}
