package ports

import (
	"context"
	"time"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

// TextNormalizer cleans raw query text before classification.
type TextNormalizer interface {
	Normalize(raw string) string
}

// QueryClassifier scores a normalized query against the fixed intent set.
// Implementations never fail; the worst case is general with confidence 0.
type QueryClassifier interface {
	Classify(normalized string) domain.Classification
}

// ConceptExtractor derives ranked candidate subject terms from a query.
type ConceptExtractor interface {
	Extract(normalized string) []domain.Concept
}

// QueryPlanner synthesizes parameterized SPARQL specs for an intent.
type QueryPlanner interface {
	Plan(cls domain.Classification, concepts []domain.Concept) []domain.QuerySpec
}

// GraphQuerier executes a SPARQL SELECT against the graph store.
type GraphQuerier interface {
	Select(ctx context.Context, query string) ([]domain.BindingRow, error)
}

// GraphMetadata exposes schema-level reads used for enrichment and fallback.
type GraphMetadata interface {
	Overview(ctx context.Context) (domain.SchemaOverview, error)
	RelatedEntities(ctx context.Context, uri string, limit int) ([]domain.EntityRef, error)
	ClassInstances(ctx context.Context, classURI string, limit int) ([]domain.EntityRef, error)
	SiblingClasses(ctx context.Context, classURI string, limit int) ([]domain.EntityRef, error)
	PropertyUsage(ctx context.Context, propertyURI string, limit int) ([]domain.UsageExample, error)
	LocalName(uri string) string
}

// SemanticSearcher is the vector search collaborator. It embeds the query
// text itself and returns entities at or above minScore.
type SemanticSearcher interface {
	Search(ctx context.Context, text string, topK int, minScore float64) ([]domain.SemanticHit, error)
}

// ChainQA translates natural language straight into a SPARQL query and an
// answer as one opaque call. Available reports whether the collaborator is
// configured; an unavailable chain is silently skipped.
type ChainQA interface {
	Available() bool
	Ask(ctx context.Context, question string) domain.ChainAnswer
}

// Embedder builds vectors for entity descriptions and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator phrases the final user-facing response from the
// assembled context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string, intent domain.Intent) (string, error)
}

// OntologyCatalog enumerates the graph's named entities for indexing.
type OntologyCatalog interface {
	ListEntities(ctx context.Context) ([]domain.IndexableEntity, error)
}

// EntityIndexer stores entity vectors for semantic search.
type EntityIndexer interface {
	IndexEntities(ctx context.Context, entities []domain.IndexableEntity) error
}

// ConversationStore persists chat history.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, message domain.ConversationMessage) error
	ListRecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]domain.ConversationMessage, error)
}

// EventPublisher emits processed-query events for async consumers.
type EventPublisher interface {
	PublishQueryProcessed(ctx context.Context, event domain.QueryProcessedEvent) error
}

// SuggestionProvider proposes follow-up questions for a partial query.
type SuggestionProvider interface {
	Suggestions(partial string) []string
}

// QueryMetrics records processing observations. A nil implementation is
// valid and records nothing.
type QueryMetrics interface {
	RecordQuery(service, intent string, entityCount int, usedFallback bool, duration time.Duration)
	RecordSourceOutcome(service, source, outcome string, duration time.Duration)
	RecordContextSize(service string, chars int)
}
