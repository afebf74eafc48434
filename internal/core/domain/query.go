package domain

// Intent is the coarse category of what the user is asking for.
type Intent string

const (
	IntentDefinition   Intent = "definition"
	IntentRelationship Intent = "relationship"
	IntentProperty     Intent = "property"
	IntentListing      Intent = "listing"
	IntentComparison   Intent = "comparison"
	IntentHierarchical Intent = "hierarchical"
	IntentExistence    Intent = "existence"
	IntentCount        Intent = "count"
	IntentGeneral      Intent = "general"
)

// Intents lists the classifiable intents in their canonical order.
// The order is the tie-break for equal classification scores.
var Intents = []Intent{
	IntentDefinition,
	IntentRelationship,
	IntentProperty,
	IntentListing,
	IntentComparison,
	IntentHierarchical,
	IntentExistence,
	IntentCount,
}

// Classification is the scored intent decision for one query.
type Classification struct {
	Primary    Intent             `json:"primary_intent"`
	Secondary  Intent             `json:"secondary_intent,omitempty"`
	Confidence float64            `json:"confidence"`
	Scores     map[Intent]float64 `json:"all_scores"`
}

// Concept is a candidate subject term extracted from the query text.
type Concept struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Options controls one query-processing call. The zero value disables
// chain QA and semantic search; callers that want the standard behavior
// must start from DefaultOptions rather than a zero Options.
type Options struct {
	TopK                  int
	UseChainQA            bool
	IncludeSemanticSearch bool
}

func DefaultOptions() Options {
	return Options{
		TopK:                  15,
		UseChainQA:            true,
		IncludeSemanticSearch: true,
	}
}

// Normalize clamps TopK to its default. Boolean fields are taken as
// given; false means the source is disabled.
func (o Options) Normalize() Options {
	if o.TopK <= 0 {
		o.TopK = 15
	}
	return o
}
