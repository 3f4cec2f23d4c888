package usregion

import "strings"

// Sanitize reduces s to its comparable form: surrounding whitespace is trimmed,
// everything other than ASCII letters is removed (not only at the ends), and
// the remaining letters are upper-cased.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		}
	}
	return b.String()
}

// SanitizeAll sanitizes each string in ss independently.
func SanitizeAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	r := make([]string, len(ss))
	for i, s := range ss {
		r[i] = Sanitize(s)
	}
	return r
}
