package sparql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

// Metadata answers schema-level questions over the same SPARQL endpoint:
// overview counts for the fallback context and the bounded follow-up
// lookups used for entity enrichment. Entity URIs are interpolated inside
// <> IRI references, so they are validated rather than literal-escaped.
type Metadata struct {
	client *Client
}

func NewMetadata(client *Client) *Metadata {
	return &Metadata{client: client}
}

func (m *Metadata) Overview(ctx context.Context) (domain.SchemaOverview, error) {
	overview := domain.SchemaOverview{}

	counts := []struct {
		query string
		dst   *int
	}{
		{prefixes + `SELECT (COUNT(?s) AS ?count) WHERE { ?s ?p ?o }`, &overview.TripleCount},
		{prefixes + `SELECT (COUNT(DISTINCT ?c) AS ?count) WHERE { ?c rdf:type owl:Class }`, &overview.ClassCount},
		{prefixes + `SELECT (COUNT(DISTINCT ?p) AS ?count) WHERE {
    { ?p rdf:type owl:ObjectProperty } UNION { ?p rdf:type owl:DatatypeProperty }
}`, &overview.PropertyCount},
		{prefixes + `SELECT (COUNT(DISTINCT ?i) AS ?count) WHERE { ?i rdf:type owl:NamedIndividual }`, &overview.IndividualCount},
	}

	for _, c := range counts {
		rows, err := m.client.Select(ctx, c.query)
		if err != nil {
			return domain.SchemaOverview{}, fmt.Errorf("schema overview: %w", err)
		}
		if len(rows) > 0 {
			if n, err := strconv.Atoi(rows[0]["count"]); err == nil {
				*c.dst = n
			}
		}
	}

	namespaces, err := m.namespaces(ctx)
	if err == nil {
		overview.Namespaces = namespaces
	}
	return overview, nil
}

func (m *Metadata) namespaces(ctx context.Context) ([]string, error) {
	rows, err := m.client.Select(ctx, prefixes+`
SELECT DISTINCT ?s WHERE { ?s ?p ?o . FILTER(isIRI(?s)) } LIMIT 200`)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, row := range rows {
		ns := namespaceOf(row["s"])
		if ns == "" {
			continue
		}
		if _, dup := seen[ns]; dup {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	return out, nil
}

// ListEntities enumerates every named class, property and individual with
// its labels and comments, grouped per entity. Rows arrive one label or
// comment at a time; entities keep their first-seen order.
func (m *Metadata) ListEntities(ctx context.Context) ([]domain.IndexableEntity, error) {
	rows, err := m.client.Select(ctx, prefixes+`
SELECT DISTINCT ?entity ?type ?label ?comment WHERE {
    { ?entity rdf:type owl:Class . BIND("Class" AS ?type) }
    UNION { ?entity rdf:type owl:ObjectProperty . BIND("ObjectProperty" AS ?type) }
    UNION { ?entity rdf:type owl:DatatypeProperty . BIND("DatatypeProperty" AS ?type) }
    UNION { ?entity rdf:type owl:NamedIndividual . BIND("NamedIndividual" AS ?type) }
    OPTIONAL { ?entity rdfs:label ?label }
    OPTIONAL { ?entity rdfs:comment ?comment }
    FILTER(isIRI(?entity))
}`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	index := make(map[string]int, len(rows))
	out := make([]domain.IndexableEntity, 0, len(rows))
	for _, row := range rows {
		uri := row["entity"]
		if uri == "" {
			continue
		}
		i, seen := index[uri]
		if !seen {
			i = len(out)
			index[uri] = i
			out = append(out, domain.IndexableEntity{
				URI:        uri,
				LocalName:  m.LocalName(uri),
				EntityType: row["type"],
			})
		}
		if label := row["label"]; label != "" && !containsString(out[i].Labels, label) {
			out[i].Labels = append(out[i].Labels, label)
		}
		if comment := row["comment"]; comment != "" && !containsString(out[i].Comments, comment) {
			out[i].Comments = append(out[i].Comments, comment)
		}
	}
	return out, nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func (m *Metadata) RelatedEntities(ctx context.Context, uri string, limit int) ([]domain.EntityRef, error) {
	iri, err := validateIRI(uri)
	if err != nil {
		return nil, err
	}

	rows, err := m.client.Select(ctx, fmt.Sprintf(prefixes+`
SELECT DISTINCT ?related ?label WHERE {
    { <%[1]s> ?p ?related . FILTER(isIRI(?related)) }
    UNION
    { ?related ?p <%[1]s> . FILTER(isIRI(?related)) }
    OPTIONAL { ?related rdfs:label ?label }
    FILTER(?related != <%[1]s>)
}
LIMIT %[2]d`, iri, limit))
	if err != nil {
		return nil, fmt.Errorf("related entities: %w", err)
	}
	return m.toEntityRefs(rows, "related"), nil
}

// ClassInstances returns up to limit individuals typed by the class.
func (m *Metadata) ClassInstances(ctx context.Context, classURI string, limit int) ([]domain.EntityRef, error) {
	iri, err := validateIRI(classURI)
	if err != nil {
		return nil, err
	}

	rows, err := m.client.Select(ctx, fmt.Sprintf(prefixes+`
SELECT ?instance ?label WHERE {
    ?instance rdf:type <%s> .
    OPTIONAL { ?instance rdfs:label ?label }
} LIMIT %d`, iri, limit))
	if err != nil {
		return nil, fmt.Errorf("class instances: %w", err)
	}
	return m.toEntityRefs(rows, "instance"), nil
}

// SiblingClasses returns classes sharing a direct superclass, excluding
// the class itself.
func (m *Metadata) SiblingClasses(ctx context.Context, classURI string, limit int) ([]domain.EntityRef, error) {
	iri, err := validateIRI(classURI)
	if err != nil {
		return nil, err
	}

	rows, err := m.client.Select(ctx, fmt.Sprintf(prefixes+`
SELECT DISTINCT ?sibling ?label WHERE {
    <%[1]s> rdfs:subClassOf ?parent .
    ?sibling rdfs:subClassOf ?parent .
    FILTER(?sibling != <%[1]s>)
    OPTIONAL { ?sibling rdfs:label ?label }
} LIMIT %[2]d`, iri, limit))
	if err != nil {
		return nil, fmt.Errorf("sibling classes: %w", err)
	}
	return m.toEntityRefs(rows, "sibling"), nil
}

// PropertyUsage returns subject/object pairs where the property holds.
func (m *Metadata) PropertyUsage(ctx context.Context, propertyURI string, limit int) ([]domain.UsageExample, error) {
	iri, err := validateIRI(propertyURI)
	if err != nil {
		return nil, err
	}

	rows, err := m.client.Select(ctx, fmt.Sprintf(prefixes+`
SELECT ?subject ?object WHERE {
    ?subject <%s> ?object .
} LIMIT %d`, iri, limit))
	if err != nil {
		return nil, fmt.Errorf("property usage: %w", err)
	}

	out := make([]domain.UsageExample, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UsageExample{
			Subject: m.LocalName(row["subject"]),
			Object:  row["object"],
		})
	}
	return out, nil
}

// LocalName resolves a URI to its display fragment.
func (m *Metadata) LocalName(uri string) string {
	if idx := strings.LastIndexAny(uri, "#/"); idx >= 0 && idx < len(uri)-1 {
		return uri[idx+1:]
	}
	return uri
}

func (m *Metadata) toEntityRefs(rows []domain.BindingRow, variable string) []domain.EntityRef {
	out := make([]domain.EntityRef, 0, len(rows))
	for _, row := range rows {
		uri := row[variable]
		if uri == "" {
			continue
		}
		label := row["label"]
		if label == "" {
			label = m.LocalName(uri)
		}
		out = append(out, domain.EntityRef{URI: uri, Label: label})
	}
	return out
}

func namespaceOf(uri string) string {
	if idx := strings.LastIndexAny(uri, "#/"); idx > len("http://") {
		return uri[:idx+1]
	}
	return ""
}

// validateIRI rejects URIs that could break out of an <> IRI reference in
// the generated query.
func validateIRI(uri string) (string, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return "", fmt.Errorf("empty entity uri")
	}
	if strings.ContainsAny(trimmed, "<>\"{}|\\^`\n\r\t ") {
		return "", fmt.Errorf("entity uri contains forbidden characters: %q", uri)
	}
	return trimmed, nil
}
