package catalog

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptySlug is returned on save when neither the slug nor the title
// leaves any letter or digit after normalization.
var ErrEmptySlug = errors.New("slug must contain at least one letter or digit")

// NormalizeSlug lowercases s and keeps letters and digits (any script),
// joining words with single dashes.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case r == '\'' || r == '’':
			// dropped so "men's" becomes "mens"
		case unicode.IsSpace(r), r == '_', r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
