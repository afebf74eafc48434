package textproc

import "fmt"

const maxSuggestions = 10

var generalSuggestions = []string{
	"What classes are in this ontology?",
	"What properties are available?",
	"Show me the ontology structure",
	"How many entities are in the knowledge graph?",
}

// Suggester implements the suggestion port on top of the extractor.
type Suggester struct {
	extractor *Extractor
}

func NewSuggester(extractor *Extractor) *Suggester {
	return &Suggester{extractor: extractor}
}

func (s *Suggester) Suggestions(partial string) []string {
	return Suggestions(s.extractor, partial)
}

// Suggestions proposes follow-up questions for a partial query. The first
// extracted concept seeds the templated questions; general ones pad the
// tail. At most ten are returned.
func Suggestions(extractor *Extractor, partial string) []string {
	out := make([]string, 0, maxSuggestions)

	if concepts := extractor.Extract(Normalize(partial)); len(concepts) > 0 {
		main := concepts[0].Term
		out = append(out,
			fmt.Sprintf("What is %s?", main),
			fmt.Sprintf("Tell me about %s", main),
			fmt.Sprintf("What properties does %s have?", main),
			fmt.Sprintf("What are the subclasses of %s?", main),
			fmt.Sprintf("How is %s related to other concepts?", main),
			fmt.Sprintf("List all %s in the ontology", main),
			fmt.Sprintf("Give me examples of %s", main),
		)
	}

	out = append(out, generalSuggestions...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
