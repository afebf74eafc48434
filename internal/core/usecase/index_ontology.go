package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
	"github.com/antonkh/ontology-assistant/internal/core/ports"
)

// indexBatchSize bounds the number of entity descriptions embedded per
// request to the embedding backend.
const indexBatchSize = 64

// IndexOntologyUseCase rebuilds the semantic index from the graph store.
// Reindex is idempotent; running it again upserts fresh points.
type IndexOntologyUseCase struct {
	catalog ports.OntologyCatalog
	indexer ports.EntityIndexer
	logger  *slog.Logger
}

func NewIndexOntologyUseCase(catalog ports.OntologyCatalog, indexer ports.EntityIndexer, logger *slog.Logger) *IndexOntologyUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexOntologyUseCase{catalog: catalog, indexer: indexer, logger: logger}
}

func (uc *IndexOntologyUseCase) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	entities, err := uc.catalog.ListEntities(ctx)
	if err != nil {
		return 0, fmt.Errorf("list entities: %w", err)
	}
	if len(entities) == 0 {
		return 0, nil
	}

	for i := range entities {
		entities[i].Text = describeEntity(entities[i])
	}

	for offset := 0; offset < len(entities); offset += indexBatchSize {
		end := offset + indexBatchSize
		if end > len(entities) {
			end = len(entities)
		}
		if err := uc.indexer.IndexEntities(ctx, entities[offset:end]); err != nil {
			return offset, fmt.Errorf("index entities: %w", err)
		}
	}

	uc.logger.Info("ontology_indexed",
		"entities", len(entities),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return len(entities), nil
}

// describeEntity composes the text that gets embedded for an entity: its
// name and type, then labels and comments when present.
func describeEntity(e domain.IndexableEntity) string {
	parts := []string{fmt.Sprintf("%s (%s)", e.LocalName, e.EntityType)}
	if len(e.Labels) > 0 {
		parts = append(parts, strings.Join(e.Labels, "; "))
	}
	if len(e.Comments) > 0 {
		parts = append(parts, strings.Join(e.Comments, " "))
	}
	return strings.Join(parts, ". ")
}
