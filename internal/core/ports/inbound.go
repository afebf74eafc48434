package ports

import (
	"context"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

// QueryProcessor is the inbound contract for hybrid query processing.
type QueryProcessor interface {
	Process(ctx context.Context, query string, opts domain.Options) (*domain.QueryResult, error)
}

// ChatService is the inbound contract for the conversational surface.
type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
	Suggestions(ctx context.Context, partial string) ([]string, error)
}

// OntologyIndexer rebuilds the semantic index from the graph store.
type OntologyIndexer interface {
	Reindex(ctx context.Context) (int, error)
}
