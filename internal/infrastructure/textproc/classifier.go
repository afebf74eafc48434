package textproc

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

// Classifier scores queries against fixed per-intent pattern and keyword
// tables. All tables are built once in NewClassifier and never mutated, so
// a single instance is safe to share across requests.
type Classifier struct {
	patterns map[domain.Intent][]*regexp.Regexp
	keywords map[domain.Intent][]string
}

func NewClassifier() *Classifier {
	compile := func(exprs ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			out = append(out, regexp.MustCompile(expr))
		}
		return out
	}

	return &Classifier{
		patterns: map[domain.Intent][]*regexp.Regexp{
			domain.IntentDefinition: compile(
				`what is (a |an )?(.+)`,
				`define (.+)`,
				`explain (.+)`,
				`describe (.+)`,
				`tell me about (.+)`,
				`give me information about (.+)`,
				`(.+) definition`,
			),
			domain.IntentRelationship: compile(
				`how (is |are )?(.+) related to (.+)`,
				`what (.+) connect(.+) to (.+)`,
				`relationship between (.+) and (.+)`,
				`(.+) related to (.+)`,
				`how do (.+) and (.+) interact`,
				`connection between (.+) and (.+)`,
			),
			domain.IntentProperty: compile(
				`what (.+) properties (.+) (have|has)`,
				`what attributes (.+) (have|has)`,
				`properties of (.+)`,
				`attributes of (.+)`,
				`characteristics of (.+)`,
				`what can (.+) do`,
				`capabilities of (.+)`,
			),
			domain.IntentListing: compile(
				`list (.+)`,
				`show me (.+)`,
				`find all (.+)`,
				`what are (.+)`,
				`give me all (.+)`,
				`enumerate (.+)`,
				`all (.+) in (.+)`,
			),
			domain.IntentComparison: compile(
				`difference between (.+) and (.+)`,
				`compare (.+) (and|with) (.+)`,
				`(.+) vs (.+)`,
				`(.+) versus (.+)`,
				`how (.+) different from (.+)`,
				`similarities between (.+) and (.+)`,
			),
			domain.IntentHierarchical: compile(
				`what are the subclasses of (.+)`,
				`what are the superclasses of (.+)`,
				`(.+) hierarchy`,
				`children of (.+)`,
				`parents of (.+)`,
				`what inherits from (.+)`,
				`what does (.+) inherit from`,
			),
			domain.IntentExistence: compile(
				`does (.+) exist`,
				`is there (.+)`,
				`are there any (.+)`,
				`do we have (.+)`,
				`can you find (.+)`,
			),
			domain.IntentCount: compile(
				`how many (.+)`,
				`count (.+)`,
				`number of (.+)`,
				`total (.+)`,
			),
		},
		keywords: map[domain.Intent][]string{
			domain.IntentDefinition:   {"what", "define", "explain", "describe", "meaning", "definition"},
			domain.IntentRelationship: {"related", "relationship", "connection", "interact", "connect"},
			domain.IntentProperty:     {"property", "properties", "attribute", "attributes", "characteristic"},
			domain.IntentListing:      {"list", "show", "all", "find", "enumerate", "give me"},
			domain.IntentComparison:   {"difference", "compare", "vs", "versus", "different", "similar"},
			domain.IntentHierarchical: {"subclass", "superclass", "hierarchy", "inherit", "parent", "child"},
			domain.IntentExistence:    {"exist", "there", "any", "have", "find"},
			domain.IntentCount:        {"many", "count", "number", "total", "how much"},
		},
	}
}

// Classify runs two independent scoring passes over the lower-cased query:
// +1 per matching pattern, +0.5 per contained keyword, summed per intent.
func (c *Classifier) Classify(normalized string) domain.Classification {
	lower := strings.ToLower(strings.TrimSpace(normalized))

	scores := make(map[domain.Intent]float64, len(domain.Intents))
	for _, intent := range domain.Intents {
		score := 0.0
		for _, re := range c.patterns[intent] {
			if re.MatchString(lower) {
				score++
			}
		}
		for _, keyword := range c.keywords[intent] {
			if strings.Contains(lower, keyword) {
				score += 0.5
			}
		}
		scores[intent] = score
	}

	ranked := make([]domain.Intent, len(domain.Intents))
	copy(ranked, domain.Intents)
	// Stable sort keeps the declared enumeration order for equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	cls := domain.Classification{
		Primary: domain.IntentGeneral,
		Scores:  scores,
	}
	if scores[ranked[0]] > 0 {
		cls.Primary = ranked[0]
		cls.Confidence = scores[ranked[0]]
	}
	if len(ranked) > 1 && scores[ranked[1]] > 0 && ranked[1] != cls.Primary {
		cls.Secondary = ranked[1]
	}
	return cls
}
