package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antonkh/ontology-assistant/internal/config"
	"github.com/antonkh/ontology-assistant/internal/core/ports"
	"github.com/antonkh/ontology-assistant/internal/core/usecase"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/llm/ollama"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/queue/nats"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/repository/postgres"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/resilience"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/sparql"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/textproc"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/vector/qdrant"
	"github.com/antonkh/ontology-assistant/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.ServerMetrics

	ProcessUC ports.QueryProcessor
	ChatUC    ports.ChatService
	IndexUC   ports.OntologyIndexer
	Metadata  ports.GraphMetadata

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:   cfg.RetryMaxAttempts,
		BreakerEnabled:     true,
		BreakerMinRequests: uint32(cfg.BreakerFailureThreshold),
		BreakerOpenTimeout: time.Duration(cfg.BreakerOpenSeconds) * time.Second,
	}, logger)

	graphClient := sparql.NewClient(cfg.SPARQLEndpoint, executor)
	graphMetadata := sparql.NewMetadata(graphClient)
	planner := sparql.NewPlanner(logger)

	normalizer := textproc.NewNormalizer()
	classifier := textproc.NewClassifier()
	extractor := textproc.NewExtractor()
	suggester := textproc.NewSuggester(extractor)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	chain := ollama.NewChainQA(ollamaClient, graphClient, graphMetadata, logger)

	searcher := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, embedder, executor)

	db, err := postgres.OpenDB(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	store := postgres.NewConversationRepository(db)

	publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	serverMetrics := metrics.NewServerMetrics("api")

	processUC := usecase.NewProcessQueryUseCase(
		normalizer,
		classifier,
		extractor,
		planner,
		graphClient,
		graphMetadata,
		searcher,
		chain,
		serverMetrics,
		logger,
	)
	chatUC := usecase.NewChatUseCase(processUC, generator, suggester, store, publisher, cfg.ChatHistoryMessages, logger)
	indexUC := usecase.NewIndexOntologyUseCase(graphMetadata, searcher, logger)

	return &App{
		Config:  cfg,
		Metrics: serverMetrics,

		ProcessUC: processUC,
		ChatUC:    chatUC,
		IndexUC:   indexUC,
		Metadata:  graphMetadata,

		closeFn: func() {
			publisher.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
