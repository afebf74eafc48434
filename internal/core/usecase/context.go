package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

const (
	maxContextConcepts   = 5
	maxContextHits       = 5
	maxContextComments   = 2
	maxContextNeighbors  = 3
	maxContextResultRows = 5
)

// BuildContext renders one processing result into the textual context
// handed to answer generation. Pure string assembly; section order is the
// trust order: the chain answer first, then semantic hits, then structured
// rows, with a schema overview when nothing else came back.
func BuildContext(result *domain.QueryResult) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("User Query: %s", result.OriginalQuery))
	parts = append(parts, fmt.Sprintf("Query Intent: %s", result.Classification.Primary))
	if result.Classification.Secondary != "" {
		parts = append(parts, fmt.Sprintf("Secondary Intent: %s", result.Classification.Secondary))
	}
	parts = append(parts, fmt.Sprintf("Key Concepts: %s", joinConceptTerms(result.Concepts, maxContextConcepts)))
	parts = append(parts, "")

	chainOK := result.ChainResult != nil && result.ChainResult.Err == ""
	if chainOK {
		parts = append(parts, "=== SPARQL QA CHAIN ANALYSIS ===")
		if result.ChainResult.Answer != "" {
			parts = append(parts, fmt.Sprintf("Generated Answer: %s", result.ChainResult.Answer))
		}
		if result.ChainResult.SPARQLQuery != "" {
			parts = append(parts, fmt.Sprintf("SPARQL Query Used: %s", result.ChainResult.SPARQLQuery))
		}
		parts = append(parts, "")
	}

	if len(result.SemanticHits) > 0 {
		parts = append(parts, "=== RELEVANT ENTITIES FROM KNOWLEDGE GRAPH ===")
		for i, hit := range result.SemanticHits {
			if i >= maxContextHits {
				break
			}
			parts = append(parts, renderHit(i+1, hit)...)
		}
	}

	if len(result.DirectResults) > 0 {
		parts = append(parts, "=== ADDITIONAL SPARQL QUERY RESULTS ===")
		for _, structured := range result.DirectResults {
			parts = append(parts, fmt.Sprintf("%s:", structured.Spec.Description))
			for i, row := range structured.Rows {
				if i >= maxContextResultRows {
					break
				}
				parts = append(parts, fmt.Sprintf("  %d. %s", i+1, renderRow(row)))
			}
			parts = append(parts, "")
		}
	}

	if len(result.SemanticHits) == 0 && !chainOK && result.SchemaFallback != nil {
		parts = append(parts, "=== ONTOLOGY SCHEMA OVERVIEW ===")
		parts = append(parts, renderOverview(*result.SchemaFallback))
		parts = append(parts, "")
	}

	parts = append(parts, "=== INSTRUCTIONS ===")
	parts = append(parts, "Based on the above information from the RDF knowledge graph:")
	parts = append(parts, "1. Provide a comprehensive and accurate answer to the user's query")
	parts = append(parts, "2. Prioritize information from the SPARQL QA chain analysis if available")
	parts = append(parts, "3. Use the relevant entities and SPARQL results to provide detailed explanations")
	parts = append(parts, "4. Explain relationships and concepts clearly with examples where available")
	parts = append(parts, "5. If information is insufficient, acknowledge this and suggest related topics")
	parts = append(parts, "6. Focus on the most relevant information based on the query intent")

	return strings.Join(parts, "\n")
}

func renderHit(position int, hit domain.SemanticHit) []string {
	out := []string{
		fmt.Sprintf("%d. %s (%s)", position, hit.LocalName, hit.EntityType),
		fmt.Sprintf("   URI: %s", hit.URI),
	}

	if len(hit.Labels) > 0 {
		out = append(out, fmt.Sprintf("   Labels: %s", strings.Join(hit.Labels, ", ")))
	}
	if len(hit.Comments) > 0 {
		comments := hit.Comments
		if len(comments) > maxContextComments {
			comments = comments[:maxContextComments]
		}
		out = append(out, fmt.Sprintf("   Description: %s", strings.Join(comments, " ")))
	}
	if hit.Enrichment != nil {
		if names := refLabels(hit.Enrichment.Related, maxContextNeighbors); len(names) > 0 {
			out = append(out, fmt.Sprintf("   Related to: %s", strings.Join(names, ", ")))
		}
		if names := refLabels(hit.Enrichment.Instances, maxContextNeighbors); len(names) > 0 {
			out = append(out, fmt.Sprintf("   Examples: %s", strings.Join(names, ", ")))
		}
	}
	out = append(out, fmt.Sprintf("   Similarity Score: %.3f", hit.Similarity))
	out = append(out, "")
	return out
}

func renderRow(row domain.BindingRow) string {
	names := make([]string, 0, len(row))
	for name := range row {
		if row[name] == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s: %s", name, row[name]))
	}
	return strings.Join(pairs, ", ")
}

func renderOverview(overview domain.SchemaOverview) string {
	summary := fmt.Sprintf(
		"The ontology contains %d triples: %d classes, %d properties and %d individuals.",
		overview.TripleCount, overview.ClassCount, overview.PropertyCount, overview.IndividualCount,
	)
	if len(overview.Namespaces) > 0 {
		summary += fmt.Sprintf("\nNamespaces: %s", strings.Join(overview.Namespaces, ", "))
	}
	return summary
}

func joinConceptTerms(concepts []domain.Concept, limit int) string {
	terms := make([]string, 0, limit)
	for i, concept := range concepts {
		if i >= limit {
			break
		}
		terms = append(terms, concept.Term)
	}
	return strings.Join(terms, ", ")
}

func refLabels(refs []domain.EntityRef, limit int) []string {
	out := make([]string, 0, limit)
	for _, ref := range refs {
		if len(out) >= limit {
			break
		}
		if ref.Label != "" {
			out = append(out, ref.Label)
		}
	}
	return out
}
