package sparql

import (
	"strings"
	"unicode"
)

// EscapeLiteral prepares user-derived text for interpolation into a SPARQL
// string literal. Backslashes are escaped before quotes so that a later
// substitution cannot re-introduce an unescaped backslash; the order of the
// replacements is a correctness invariant. Apply exactly once per literal:
// a second application doubles the backslashes again.
func EscapeLiteral(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	text = strings.ReplaceAll(text, `'`, `\'`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	text = strings.ReplaceAll(text, "\t", `\t`)

	// Drop anything outside word characters, whitespace, hyphen,
	// underscore and period, keeping the escape sequences introduced
	// above intact.
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case '\\', '"', '\'', 'n', 'r', 't':
				b.WriteRune(runes[i])
				b.WriteRune(runes[i+1])
				i++
				continue
			}
		}
		if allowedLiteralRune(runes[i]) {
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}

func allowedLiteralRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
		r == '-' || r == '_' || r == '.'
}
