package ollama

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

var intentInstructions = map[domain.Intent]string{
	domain.IntentDefinition:   "Provide a clear and comprehensive definition. Include all relevant details about the concept.",
	domain.IntentRelationship: "Explain the relationships and connections clearly. Show how different concepts are related.",
	domain.IntentProperty:     "List and explain the properties and attributes. Provide examples where possible.",
	domain.IntentListing:      "Provide a well-organized list. Group similar items together and explain their significance.",
	domain.IntentComparison:   "Compare and contrast the concepts clearly. Highlight similarities and differences.",
	domain.IntentHierarchical: "Explain the hierarchical structure clearly. Show parent-child relationships.",
	domain.IntentExistence:    "Confirm whether the concept exists and provide relevant details if it does.",
	domain.IntentCount:        "Provide accurate counts and explain what the numbers represent.",
}

func buildAnswerPrompt(question, contextText string, intent domain.Intent) string {
	instruction, ok := intentInstructions[intent]
	if !ok {
		instruction = "Provide a comprehensive and helpful answer."
	}

	return fmt.Sprintf(`You are a knowledgeable assistant that answers questions about RDF knowledge graphs and ontologies.

Query Intent: %s

Context from Knowledge Graph:
%s

User Question: %s

Instructions:
- %s
- Base your answer on the provided knowledge graph context
- Be accurate and cite specific information from the context when possible
- If the SPARQL analysis provided an answer, prioritize and build upon it
- Be conversational but informative
- If information is insufficient, acknowledge this and suggest related topics

Answer:`, intent, contextText, question, instruction)
}

func buildSPARQLGenerationPrompt(question string, overview domain.SchemaOverview) string {
	namespaces := strings.Join(overview.Namespaces, "\n")
	if namespaces == "" {
		namespaces = "(unknown)"
	}

	return fmt.Sprintf(`You translate natural language questions into SPARQL SELECT queries.
The knowledge graph has %d triples, %d classes, %d properties and %d individuals.
Known namespaces:
%s

Rules:
- Return ONLY the SPARQL query, no explanation, no markdown fences.
- Use PREFIX declarations for rdf, rdfs and owl.
- Always include a LIMIT clause of at most 25.

Question: %s`,
		overview.TripleCount, overview.ClassCount, overview.PropertyCount, overview.IndividualCount,
		namespaces, question)
}

func buildRowAnswerPrompt(question string, rows []domain.BindingRow) string {
	var rendered strings.Builder
	for i, row := range rows {
		if i >= 10 {
			break
		}
		names := make([]string, 0, len(row))
		for name := range row {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, row[name]))
		}
		rendered.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.Join(parts, ", ")))
	}

	return fmt.Sprintf(`Answer the question using only the SPARQL query results below.
If the results do not answer the question, say so directly.

Question: %s

Results:
%s`, question, rendered.String())
}
