package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

type fakeCatalog struct {
	entities []domain.IndexableEntity
	err      error
}

func (f *fakeCatalog) ListEntities(context.Context) ([]domain.IndexableEntity, error) {
	return f.entities, f.err
}

type fakeIndexer struct {
	batches [][]domain.IndexableEntity
	err     error
}

func (f *fakeIndexer) IndexEntities(_ context.Context, entities []domain.IndexableEntity) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, entities)
	return nil
}

func catalogEntities(n int) []domain.IndexableEntity {
	out := make([]domain.IndexableEntity, n)
	for i := range out {
		out[i] = domain.IndexableEntity{
			URI:        "http://ex.org/E",
			LocalName:  "E",
			EntityType: "Class",
		}
	}
	return out
}

func TestReindexComposesDescriptionText(t *testing.T) {
	catalog := &fakeCatalog{entities: []domain.IndexableEntity{{
		URI:        "http://ex.org/Cat",
		LocalName:  "Cat",
		EntityType: "Class",
		Labels:     []string{"Cat", "Feline"},
		Comments:   []string{"A small domesticated animal."},
	}}}
	indexer := &fakeIndexer{}
	uc := NewIndexOntologyUseCase(catalog, indexer, nil)

	count, err := uc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if len(indexer.batches) != 1 || len(indexer.batches[0]) != 1 {
		t.Fatalf("unexpected batches %v", indexer.batches)
	}
	text := indexer.batches[0][0].Text
	if !strings.HasPrefix(text, "Cat (Class)") {
		t.Fatalf("text must start with name and type: %q", text)
	}
	if !strings.Contains(text, "Cat; Feline") {
		t.Fatalf("labels missing: %q", text)
	}
	if !strings.Contains(text, "A small domesticated animal.") {
		t.Fatalf("comment missing: %q", text)
	}
}

func TestReindexBatchesLargeCatalogs(t *testing.T) {
	indexer := &fakeIndexer{}
	uc := NewIndexOntologyUseCase(&fakeCatalog{entities: catalogEntities(150)}, indexer, nil)

	count, err := uc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if count != 150 {
		t.Fatalf("count = %d, want 150", count)
	}
	if len(indexer.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(indexer.batches))
	}
	if len(indexer.batches[0]) != indexBatchSize || len(indexer.batches[2]) != 150-2*indexBatchSize {
		t.Fatalf("unexpected batch sizes %d/%d/%d",
			len(indexer.batches[0]), len(indexer.batches[1]), len(indexer.batches[2]))
	}
}

func TestReindexEmptyCatalogIsNoop(t *testing.T) {
	indexer := &fakeIndexer{}
	uc := NewIndexOntologyUseCase(&fakeCatalog{}, indexer, nil)

	count, err := uc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if len(indexer.batches) != 0 {
		t.Fatalf("indexer must not be called for an empty catalog")
	}
}

func TestReindexPropagatesFailures(t *testing.T) {
	uc := NewIndexOntologyUseCase(&fakeCatalog{err: errors.New("endpoint down")}, &fakeIndexer{}, nil)
	if _, err := uc.Reindex(context.Background()); err == nil {
		t.Fatalf("expected catalog error")
	}

	uc = NewIndexOntologyUseCase(&fakeCatalog{entities: catalogEntities(2)}, &fakeIndexer{err: errors.New("qdrant down")}, nil)
	if _, err := uc.Reindex(context.Background()); err == nil {
		t.Fatalf("expected indexer error")
	}
}
