package textproc

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

var (
	wordRe         = regexp.MustCompile(`\b[a-zA-Z]+\b`)
	doubleQuotedRe = regexp.MustCompile(`"([^"]+)"`)
	singleQuotedRe = regexp.MustCompile(`'([^']+)'`)
)

var stopWords = map[string]struct{}{
	"what": {}, "is": {}, "are": {}, "the": {}, "a": {}, "an": {}, "and": {},
	"or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "how": {}, "why": {}, "when": {},
	"where": {}, "who": {}, "which": {}, "that": {}, "this": {}, "tell": {},
	"me": {}, "about": {}, "show": {}, "find": {}, "list": {}, "describe": {},
	"explain": {}, "define": {}, "do": {}, "does": {}, "did": {}, "can": {},
	"could": {}, "would": {}, "should": {}, "will": {}, "have": {}, "has": {},
	"had": {}, "all": {},
}

// Extractor derives ranked candidate subject terms from query text.
// Stateless; one shared instance serves all requests.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns unigram, multi-word and quoted concepts scored by
// frequency plus an early-position bonus. A query of only stop-words
// yields an empty list.
func (e *Extractor) Extract(normalized string) []domain.Concept {
	lower := strings.ToLower(normalized)

	words := wordRe.FindAllString(lower, -1)
	unigrams := make([]string, 0, len(words))
	for _, word := range words {
		if _, stop := stopWords[word]; stop || len(word) <= 2 {
			continue
		}
		unigrams = append(unigrams, word)
	}

	candidates := make([]string, 0, len(unigrams)*3)
	candidates = append(candidates, unigrams...)

	// Multi-word concepts only from longer components; short connector
	// words do not form useful phrases.
	for i := 0; i < len(unigrams)-1; i++ {
		if len(unigrams[i]) > 3 && len(unigrams[i+1]) > 3 {
			candidates = append(candidates, unigrams[i]+" "+unigrams[i+1])
			if i < len(unigrams)-2 && len(unigrams[i+2]) > 3 {
				candidates = append(candidates, unigrams[i]+" "+unigrams[i+1]+" "+unigrams[i+2])
			}
		}
	}

	for _, match := range doubleQuotedRe.FindAllStringSubmatch(normalized, -1) {
		candidates = append(candidates, match[1])
	}
	for _, match := range singleQuotedRe.FindAllStringSubmatch(normalized, -1) {
		candidates = append(candidates, match[1])
	}

	type scored struct {
		concept  domain.Concept
		firstIdx int
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]scored, 0, len(candidates))
	for _, term := range candidates {
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		firstIdx := strings.Index(lower, key)
		if firstIdx < 0 {
			// Components separated by dropped words never occur verbatim;
			// such phrases are not concepts.
			continue
		}
		score := float64(strings.Count(lower, key))
		if float64(firstIdx) < float64(len(normalized))*0.3 {
			score++
		}
		out = append(out, scored{
			concept:  domain.Concept{Term: term, Score: score},
			firstIdx: firstIdx,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].concept.Score != out[j].concept.Score {
			return out[i].concept.Score > out[j].concept.Score
		}
		return out[i].firstIdx < out[j].firstIdx
	})

	concepts := make([]domain.Concept, len(out))
	for i, s := range out {
		concepts[i] = s.concept
	}
	return concepts
}
