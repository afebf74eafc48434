package sparql

import (
	"fmt"
	"log/slog"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

const prefixes = `PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX owl: <http://www.w3.org/2002/07/owl#>
`

// Planner synthesizes targeted SPARQL queries from a classified query.
// Only listing, hierarchical, relationship and count intents produce
// structured queries; the other intents rely on vector search and the
// QA chain. Every concept literal is escaped exactly once before
// interpolation.
type Planner struct {
	logger *slog.Logger
}

func NewPlanner(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{logger: logger}
}

func (p *Planner) Plan(cls domain.Classification, concepts []domain.Concept) []domain.QuerySpec {
	specs := make([]domain.QuerySpec, 0, 6)

	switch cls.Primary {
	case domain.IntentListing:
		for _, concept := range capConcepts(concepts, 3) {
			escaped := EscapeLiteral(concept.Term)
			specs = append(specs,
				domain.QuerySpec{
					Type:        "list_classes",
					Query:       buildListClassesQuery(escaped),
					Description: fmt.Sprintf("Classes related to %q", concept.Term),
				},
				domain.QuerySpec{
					Type:        "list_properties",
					Query:       buildListPropertiesQuery(escaped),
					Description: fmt.Sprintf("Properties related to %q", concept.Term),
				},
			)
		}
	case domain.IntentHierarchical:
		for _, concept := range capConcepts(concepts, 2) {
			escaped := EscapeLiteral(concept.Term)
			specs = append(specs,
				domain.QuerySpec{
					Type:        "subclasses",
					Query:       buildSubclassesQuery(escaped),
					Description: fmt.Sprintf("Subclasses of classes related to %q", concept.Term),
				},
				domain.QuerySpec{
					Type:        "superclasses",
					Query:       buildSuperclassesQuery(escaped),
					Description: fmt.Sprintf("Superclasses of classes related to %q", concept.Term),
				},
			)
		}
	case domain.IntentRelationship:
		if len(concepts) >= 2 {
			first, second := concepts[0].Term, concepts[1].Term
			specs = append(specs, domain.QuerySpec{
				Type:        "relationships",
				Query:       buildRelationshipsQuery(EscapeLiteral(first), EscapeLiteral(second)),
				Description: fmt.Sprintf("Relationships between %q and %q", first, second),
			})
		}
	case domain.IntentCount:
		for _, concept := range capConcepts(concepts, 2) {
			specs = append(specs, domain.QuerySpec{
				Type:        "count_classes",
				Query:       buildCountClassesQuery(EscapeLiteral(concept.Term)),
				Description: fmt.Sprintf("Count of classes related to %q", concept.Term),
			})
		}
	}

	if len(specs) > 0 {
		p.logger.Debug("sparql_plan", "intent", cls.Primary, "queries", len(specs))
	}
	return specs
}

func capConcepts(concepts []domain.Concept, max int) []domain.Concept {
	if len(concepts) > max {
		return concepts[:max]
	}
	return concepts
}

func buildListClassesQuery(concept string) string {
	return fmt.Sprintf(prefixes+`
SELECT ?class ?label WHERE {
    ?class rdf:type owl:Class .
    OPTIONAL { ?class rdfs:label ?label }
    FILTER(
        CONTAINS(LCASE(STR(?class)), LCASE("%[1]s")) ||
        CONTAINS(LCASE(STR(?label)), LCASE("%[1]s"))
    )
}
ORDER BY ?class
LIMIT 20`, concept)
}

func buildListPropertiesQuery(concept string) string {
	return fmt.Sprintf(prefixes+`
SELECT ?property ?label ?type WHERE {
    {
        ?property rdf:type owl:ObjectProperty .
        BIND("ObjectProperty" AS ?type)
    } UNION {
        ?property rdf:type owl:DatatypeProperty .
        BIND("DatatypeProperty" AS ?type)
    }
    OPTIONAL { ?property rdfs:label ?label }
    FILTER(
        CONTAINS(LCASE(STR(?property)), LCASE("%[1]s")) ||
        CONTAINS(LCASE(STR(?label)), LCASE("%[1]s"))
    )
}
ORDER BY ?property
LIMIT 15`, concept)
}

func buildSubclassesQuery(concept string) string {
	return fmt.Sprintf(prefixes+`
SELECT ?subclass ?label WHERE {
    ?class rdf:type owl:Class .
    ?subclass rdfs:subClassOf ?class .
    ?subclass rdf:type owl:Class .
    OPTIONAL { ?subclass rdfs:label ?label }
    OPTIONAL { ?class rdfs:label ?classLabel }
    FILTER(
        CONTAINS(LCASE(STR(?class)), LCASE("%[1]s")) ||
        CONTAINS(LCASE(STR(?classLabel)), LCASE("%[1]s"))
    )
}
ORDER BY ?subclass
LIMIT 15`, concept)
}

func buildSuperclassesQuery(concept string) string {
	return fmt.Sprintf(prefixes+`
SELECT ?superclass ?label WHERE {
    ?class rdf:type owl:Class .
    ?class rdfs:subClassOf ?superclass .
    ?superclass rdf:type owl:Class .
    OPTIONAL { ?superclass rdfs:label ?label }
    OPTIONAL { ?class rdfs:label ?classLabel }
    FILTER(
        CONTAINS(LCASE(STR(?class)), LCASE("%[1]s")) ||
        CONTAINS(LCASE(STR(?classLabel)), LCASE("%[1]s"))
    )
}
ORDER BY ?superclass
LIMIT 15`, concept)
}

func buildRelationshipsQuery(first, second string) string {
	return fmt.Sprintf(prefixes+`
SELECT ?subject ?predicate ?object ?subjectLabel ?objectLabel WHERE {
    ?subject ?predicate ?object .
    OPTIONAL { ?subject rdfs:label ?subjectLabel }
    OPTIONAL { ?object rdfs:label ?objectLabel }
    FILTER(
        (
            CONTAINS(LCASE(STR(?subject)), LCASE("%[1]s")) ||
            CONTAINS(LCASE(STR(?subjectLabel)), LCASE("%[1]s"))
        ) && (
            CONTAINS(LCASE(STR(?object)), LCASE("%[2]s")) ||
            CONTAINS(LCASE(STR(?objectLabel)), LCASE("%[2]s"))
        ) || (
            CONTAINS(LCASE(STR(?subject)), LCASE("%[2]s")) ||
            CONTAINS(LCASE(STR(?subjectLabel)), LCASE("%[2]s"))
        ) && (
            CONTAINS(LCASE(STR(?object)), LCASE("%[1]s")) ||
            CONTAINS(LCASE(STR(?objectLabel)), LCASE("%[1]s"))
        )
    )
    FILTER(?predicate != rdf:type)
}
ORDER BY ?subject ?predicate
LIMIT 20`, first, second)
}

func buildCountClassesQuery(concept string) string {
	return fmt.Sprintf(prefixes+`
SELECT (COUNT(DISTINCT ?class) AS ?count) WHERE {
    ?class rdf:type owl:Class .
    OPTIONAL { ?class rdfs:label ?label }
    FILTER(
        CONTAINS(LCASE(STR(?class)), LCASE("%[1]s")) ||
        CONTAINS(LCASE(STR(?label)), LCASE("%[1]s"))
    )
}`, concept)
}
