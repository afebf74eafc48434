package domain

// Processing method tags recorded per successful retrieval source.
const (
	MethodVectorSearch = "vector_search"
	MethodSPARQLChain  = "sparql_chain"
	MethodDirectSPARQL = "direct_sparql"
)

// EntityRef is a URI plus its display label.
type EntityRef struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// UsageExample is one subject/object pair where a property holds.
type UsageExample struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
}

// Enrichment holds the bounded follow-up lookups for a semantic hit.
// Any field may be empty when its lookup failed or did not apply.
type Enrichment struct {
	Related       []EntityRef    `json:"related_entities,omitempty"`
	Instances     []EntityRef    `json:"instances,omitempty"`
	Siblings      []EntityRef    `json:"sibling_classes,omitempty"`
	UsageExamples []UsageExample `json:"usage_examples,omitempty"`
}

// SemanticHit is one scored entity from the vector search collaborator.
type SemanticHit struct {
	URI        string      `json:"uri"`
	LocalName  string      `json:"local_name"`
	EntityType string      `json:"type"`
	Labels     []string    `json:"labels,omitempty"`
	Comments   []string    `json:"comments,omitempty"`
	Similarity float64     `json:"similarity_score"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// IsClass reports whether the hit names an ontology class.
func (h SemanticHit) IsClass() bool {
	return h.EntityType == "Class"
}

// IsProperty reports whether the hit names an object or datatype property.
func (h SemanticHit) IsProperty() bool {
	return h.EntityType == "ObjectProperty" || h.EntityType == "DatatypeProperty"
}

// IndexableEntity is one ontology entity prepared for vector indexing.
// Text is the description that gets embedded.
type IndexableEntity struct {
	URI        string
	LocalName  string
	EntityType string
	Labels     []string
	Comments   []string
	Text       string
}

// ChainAnswer is the result of the natural-language-to-SPARQL chain.
// Err is set instead of raising: a failed chain is a degraded source,
// not a failed request.
type ChainAnswer struct {
	Answer      string `json:"answer,omitempty"`
	SPARQLQuery string `json:"sparql_query,omitempty"`
	Err         string `json:"error,omitempty"`
}

func (a ChainAnswer) OK() bool {
	return a.Err == "" && a.Answer != ""
}

// QuerySpec is one synthesized SPARQL query, rendered and escaped.
type QuerySpec struct {
	Type        string `json:"type"`
	Query       string `json:"query"`
	Description string `json:"description"`
}

// BindingRow maps SPARQL projection variables to their bound values.
type BindingRow map[string]string

// StructuredResult is the outcome of one executed QuerySpec.
type StructuredResult struct {
	Spec QuerySpec    `json:"spec"`
	Rows []BindingRow `json:"rows"`
}

// SchemaOverview backs the fallback context when no source produced data.
type SchemaOverview struct {
	TripleCount     int      `json:"triple_count"`
	ClassCount      int      `json:"class_count"`
	PropertyCount   int      `json:"property_count"`
	IndividualCount int      `json:"individual_count"`
	Namespaces      []string `json:"namespaces,omitempty"`
}

// QueryResult aggregates everything one processing call produced.
type QueryResult struct {
	OriginalQuery  string             `json:"original_query"`
	CleanedQuery   string             `json:"cleaned_query"`
	Classification Classification     `json:"query_classification"`
	Concepts       []Concept          `json:"key_concepts"`
	SemanticHits   []SemanticHit      `json:"vector_search_results"`
	ChainResult    *ChainAnswer       `json:"sparql_chain_result,omitempty"`
	DirectResults  []StructuredResult `json:"direct_sparql_results,omitempty"`
	Context        string             `json:"context"`
	Methods        []string           `json:"processing_method"`
	SchemaFallback *SchemaOverview    `json:"schema_fallback,omitempty"`
}
