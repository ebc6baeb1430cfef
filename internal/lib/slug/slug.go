package slug

import (
	"strings"
	"unicode"
)

// Make приводит произвольное название к URL-безопасному slug:
// строчные латинские буквы, цифры и дефисы.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case unicode.IsSpace(r), r == '-', r == '_', r == '.', r == '/':
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// IsValid проверяет, что строка уже является корректным slug.
func IsValid(s string) bool {
	if s == "" || len(s) > 100 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
