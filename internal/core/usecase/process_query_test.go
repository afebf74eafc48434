package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
	"github.com/antonkh/ontology-assistant/internal/core/ports"
)

type fakeNormalizer struct{}

func (fakeNormalizer) Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

type fakeClassifier struct {
	cls domain.Classification
}

func (f *fakeClassifier) Classify(string) domain.Classification {
	return f.cls
}

type fakeExtractor struct {
	concepts []domain.Concept
}

func (f *fakeExtractor) Extract(string) []domain.Concept {
	return f.concepts
}

type fakePlanner struct {
	specs []domain.QuerySpec
}

func (f *fakePlanner) Plan(domain.Classification, []domain.Concept) []domain.QuerySpec {
	return f.specs
}

type fakeGraph struct {
	rows    map[string][]domain.BindingRow
	err     error
	queries []string
}

func (f *fakeGraph) Select(_ context.Context, query string) ([]domain.BindingRow, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[query], nil
}

type fakeMetadata struct {
	mu           sync.Mutex
	overview     domain.SchemaOverview
	overviewErr  error
	related      []domain.EntityRef
	relatedErr   error
	instances    []domain.EntityRef
	siblings     []domain.EntityRef
	usage        []domain.UsageExample
	relatedCalls int
}

func (f *fakeMetadata) Overview(context.Context) (domain.SchemaOverview, error) {
	return f.overview, f.overviewErr
}

func (f *fakeMetadata) RelatedEntities(context.Context, string, int) ([]domain.EntityRef, error) {
	f.mu.Lock()
	f.relatedCalls++
	f.mu.Unlock()
	return f.related, f.relatedErr
}

func (f *fakeMetadata) ClassInstances(context.Context, string, int) ([]domain.EntityRef, error) {
	return f.instances, nil
}

func (f *fakeMetadata) SiblingClasses(context.Context, string, int) ([]domain.EntityRef, error) {
	return f.siblings, nil
}

func (f *fakeMetadata) PropertyUsage(context.Context, string, int) ([]domain.UsageExample, error) {
	return f.usage, nil
}

func (f *fakeMetadata) LocalName(uri string) string {
	return uri
}

type fakeSearcher struct {
	hits []domain.SemanticHit
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int, minScore float64) ([]domain.SemanticHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.SemanticHit, 0, len(f.hits))
	for _, h := range f.hits {
		if h.Similarity >= minScore {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeChain struct {
	available bool
	answer    domain.ChainAnswer
}

func (f *fakeChain) Available() bool {
	return f.available
}

func (f *fakeChain) Ask(context.Context, string) domain.ChainAnswer {
	return f.answer
}

func newProcessUseCase(searcher *fakeSearcher, chain *fakeChain, planner *fakePlanner, graph ports.GraphQuerier, metadata *fakeMetadata, cls domain.Classification) *ProcessQueryUseCase {
	return NewProcessQueryUseCase(
		fakeNormalizer{},
		&fakeClassifier{cls: cls},
		&fakeExtractor{concepts: []domain.Concept{{Term: "cat", Score: 2}}},
		planner,
		graph,
		metadata,
		searcher,
		chain,
		nil,
		nil,
	)
}

func TestProcessCombinesAllThreeSources(t *testing.T) {
	searcher := &fakeSearcher{hits: []domain.SemanticHit{
		{URI: "http://ex.org/Cat", LocalName: "Cat", EntityType: "Class", Similarity: 0.9},
	}}
	chain := &fakeChain{available: true, answer: domain.ChainAnswer{Answer: "A cat is a mammal.", SPARQLQuery: "SELECT ?s WHERE { ?s ?p ?o }"}}
	planner := &fakePlanner{specs: []domain.QuerySpec{{Type: "list_classes", Query: "Q1", Description: "Classes matching cat"}}}
	graph := &fakeGraph{rows: map[string][]domain.BindingRow{
		"Q1": {{"class": "http://ex.org/Cat"}},
	}}
	metadata := &fakeMetadata{}

	uc := newProcessUseCase(searcher, chain, planner, graph, metadata, domain.Classification{Primary: domain.IntentListing})

	result, err := uc.Process(context.Background(), "list all cats", domain.DefaultOptions())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantMethods := []string{domain.MethodVectorSearch, domain.MethodSPARQLChain, domain.MethodDirectSPARQL}
	if len(result.Methods) != len(wantMethods) {
		t.Fatalf("methods = %v, want %v", result.Methods, wantMethods)
	}
	for i, m := range wantMethods {
		if result.Methods[i] != m {
			t.Fatalf("methods[%d] = %q, want %q", i, result.Methods[i], m)
		}
	}
	if len(result.SemanticHits) != 1 {
		t.Fatalf("expected 1 semantic hit, got %d", len(result.SemanticHits))
	}
	if result.ChainResult == nil || !result.ChainResult.OK() {
		t.Fatalf("expected successful chain result, got %+v", result.ChainResult)
	}
	if len(result.DirectResults) != 1 {
		t.Fatalf("expected 1 structured result, got %d", len(result.DirectResults))
	}
	if result.SchemaFallback != nil {
		t.Fatalf("schema fallback must not fire when sources produced data")
	}
	if result.Context == "" {
		t.Fatalf("expected assembled context")
	}
}

func TestProcessSemanticFailureDoesNotAbortOtherSources(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("vector store down")}
	chain := &fakeChain{available: true, answer: domain.ChainAnswer{Answer: "still works"}}
	planner := &fakePlanner{}
	graph := &fakeGraph{}
	metadata := &fakeMetadata{}

	uc := newProcessUseCase(searcher, chain, planner, graph, metadata, domain.Classification{Primary: domain.IntentGeneral})

	result, err := uc.Process(context.Background(), "what is a cat", domain.DefaultOptions())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(result.SemanticHits) != 0 {
		t.Fatalf("expected no semantic hits after failure")
	}
	for _, m := range result.Methods {
		if m == domain.MethodVectorSearch {
			t.Fatalf("failed source must not be recorded in methods: %v", result.Methods)
		}
	}
	if result.ChainResult == nil || result.ChainResult.Answer != "still works" {
		t.Fatalf("chain result lost: %+v", result.ChainResult)
	}
}

func TestProcessStructuredQueriesOnlyForStructuredIntents(t *testing.T) {
	planner := &fakePlanner{specs: []domain.QuerySpec{{Type: "list_classes", Query: "Q1"}}}
	graph := &fakeGraph{rows: map[string][]domain.BindingRow{"Q1": {{"class": "x"}}}}
	metadata := &fakeMetadata{}

	uc := newProcessUseCase(&fakeSearcher{}, &fakeChain{}, planner, graph, metadata, domain.Classification{Primary: domain.IntentComparison})

	result, err := uc.Process(context.Background(), "difference between Cat and Dog", domain.DefaultOptions())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(graph.queries) != 0 {
		t.Fatalf("comparison intent must not execute structured queries, ran %v", graph.queries)
	}
	if len(result.DirectResults) != 0 {
		t.Fatalf("expected no structured results, got %d", len(result.DirectResults))
	}
}

func TestProcessFailingIndividualQueryIsSkipped(t *testing.T) {
	planner := &fakePlanner{specs: []domain.QuerySpec{
		{Type: "list_classes", Query: "BAD"},
		{Type: "list_properties", Query: "OK"},
	}}
	graph := &fakeGraph{rows: map[string][]domain.BindingRow{"OK": {{"property": "p"}}}}
	graphWithError := &failFirstGraph{inner: graph, failQuery: "BAD"}

	uc := newProcessUseCase(&fakeSearcher{}, &fakeChain{}, planner, graphWithError, &fakeMetadata{}, domain.Classification{Primary: domain.IntentListing})

	result, err := uc.Process(context.Background(), "list everything", domain.DefaultOptions())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(result.DirectResults) != 1 {
		t.Fatalf("expected surviving structured result, got %d", len(result.DirectResults))
	}
	if result.DirectResults[0].Spec.Query != "OK" {
		t.Fatalf("wrong surviving query: %q", result.DirectResults[0].Spec.Query)
	}
}

type failFirstGraph struct {
	inner     *fakeGraph
	failQuery string
}

func (f *failFirstGraph) Select(ctx context.Context, query string) ([]domain.BindingRow, error) {
	if query == f.failQuery {
		return nil, errors.New("syntax error")
	}
	return f.inner.Select(ctx, query)
}

func TestProcessSchemaFallbackWhenNothingFound(t *testing.T) {
	metadata := &fakeMetadata{overview: domain.SchemaOverview{TripleCount: 42, ClassCount: 7}}

	uc := newProcessUseCase(&fakeSearcher{}, &fakeChain{available: false}, &fakePlanner{}, &fakeGraph{}, metadata, domain.Classification{Primary: domain.IntentGeneral})

	result, err := uc.Process(context.Background(), "anything at all", domain.DefaultOptions())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.SchemaFallback == nil {
		t.Fatalf("expected schema fallback")
	}
	if !strings.Contains(result.Context, "ONTOLOGY SCHEMA OVERVIEW") {
		t.Fatalf("context missing schema overview section:\n%s", result.Context)
	}
}

func TestProcessEmptyQueryIsInvalid(t *testing.T) {
	uc := newProcessUseCase(&fakeSearcher{}, &fakeChain{}, &fakePlanner{}, &fakeGraph{}, &fakeMetadata{}, domain.Classification{Primary: domain.IntentGeneral})

	_, err := uc.Process(context.Background(), "   ", domain.DefaultOptions())
	if err == nil {
		t.Fatalf("expected error for empty query")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestProcessEnrichesOnlyTopFiveHits(t *testing.T) {
	hits := make([]domain.SemanticHit, 7)
	for i := range hits {
		hits[i] = domain.SemanticHit{URI: "http://ex.org/e", LocalName: "e", EntityType: "Individual", Similarity: 0.8}
	}
	searcher := &fakeSearcher{hits: hits}
	metadata := &fakeMetadata{related: []domain.EntityRef{{URI: "http://ex.org/r", Label: "r"}}}

	uc := newProcessUseCase(searcher, &fakeChain{}, &fakePlanner{}, &fakeGraph{}, metadata, domain.Classification{Primary: domain.IntentGeneral})

	result, err := uc.Process(context.Background(), "find entities", domain.DefaultOptions())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	enriched := 0
	for _, hit := range result.SemanticHits {
		if hit.Enrichment != nil {
			enriched++
		}
	}
	if enriched != 5 {
		t.Fatalf("expected exactly 5 enriched hits, got %d", enriched)
	}
}
