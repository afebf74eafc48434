package textproc

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Common contractions expanded before classification so that the
	// intent patterns only need to match the long forms.
	contractionRes = []struct {
		re          *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(?i)\bwhats\b`), "what is"},
		{regexp.MustCompile(`(?i)\bwhos\b`), "who is"},
		{regexp.MustCompile(`(?i)\bwheres\b`), "where is"},
		{regexp.MustCompile(`(?i)\bhows\b`), "how is"},
		{regexp.MustCompile(`(?i)\bwhens\b`), "when is"},
	}
)

// Normalizer implements the text cleanup port.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (Normalizer) Normalize(query string) string {
	return Normalize(query)
}

// Normalize collapses whitespace and expands common contractions.
func Normalize(query string) string {
	out := whitespaceRe.ReplaceAllString(strings.TrimSpace(query), " ")
	for _, c := range contractionRes {
		out = c.re.ReplaceAllString(out, c.replacement)
	}
	return out
}
