package auth

import (
	"strings"
	"unicode"
)

// SanitizeName trims a display name, replaces control characters with spaces
// and collapses internal whitespace. The result is stored as-is and escaped
// on output.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
	return strings.Join(strings.Fields(name), " ")
}
