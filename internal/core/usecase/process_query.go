package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
	"github.com/antonkh/ontology-assistant/internal/core/ports"
)

// minSimilarity is the floor below which semantic hits are discarded.
const minSimilarity = 0.4

// structuredIntents lists the intents that get synthesized SPARQL queries.
var structuredIntents = map[domain.Intent]bool{
	domain.IntentListing:      true,
	domain.IntentHierarchical: true,
	domain.IntentCount:        true,
	domain.IntentRelationship: true,
}

// ProcessQueryUseCase fans a query out to the three retrieval sources,
// enriches the best semantic hits and assembles the final context. Each
// source fails soft: its contribution becomes empty and the remaining
// sources still produce a best-effort context.
type ProcessQueryUseCase struct {
	normalizer ports.TextNormalizer
	classifier ports.QueryClassifier
	extractor  ports.ConceptExtractor
	planner    ports.QueryPlanner
	graph      ports.GraphQuerier
	metadata   ports.GraphMetadata
	searcher   ports.SemanticSearcher
	chain      ports.ChainQA
	metrics    ports.QueryMetrics
	logger     *slog.Logger
}

func NewProcessQueryUseCase(
	normalizer ports.TextNormalizer,
	classifier ports.QueryClassifier,
	extractor ports.ConceptExtractor,
	planner ports.QueryPlanner,
	graph ports.GraphQuerier,
	metadata ports.GraphMetadata,
	searcher ports.SemanticSearcher,
	chain ports.ChainQA,
	metrics ports.QueryMetrics,
	logger *slog.Logger,
) *ProcessQueryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessQueryUseCase{
		normalizer: normalizer,
		classifier: classifier,
		extractor:  extractor,
		planner:    planner,
		graph:      graph,
		metadata:   metadata,
		searcher:   searcher,
		chain:      chain,
		metrics:    metrics,
		logger:     logger,
	}
}

func (uc *ProcessQueryUseCase) Process(ctx context.Context, query string, opts domain.Options) (*domain.QueryResult, error) {
	start := time.Now()
	opts = opts.Normalize()

	cleaned := uc.normalizer.Normalize(query)
	if cleaned == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process query", fmt.Errorf("empty query"))
	}

	cls := uc.classifier.Classify(cleaned)
	concepts := uc.extractor.Extract(cleaned)

	result := &domain.QueryResult{
		OriginalQuery:  query,
		CleanedQuery:   cleaned,
		Classification: cls,
		Concepts:       concepts,
	}

	var (
		hits          []domain.SemanticHit
		chainResult   *domain.ChainAnswer
		directResults []domain.StructuredResult
		usedSemantic  bool
		usedChain     bool
		usedDirect    bool
	)

	g, gctx := errgroup.WithContext(ctx)

	if opts.IncludeSemanticSearch && uc.searcher != nil {
		g.Go(func() error {
			sourceStart := time.Now()
			found, err := uc.searcher.Search(gctx, cleaned, opts.TopK, minSimilarity)
			if err != nil {
				uc.logger.Warn("semantic_search_failed", "error", err)
				uc.recordSource(domain.MethodVectorSearch, "error", sourceStart)
				return nil
			}
			hits = found
			usedSemantic = true
			uc.recordSource(domain.MethodVectorSearch, "ok", sourceStart)
			return nil
		})
	}

	if opts.UseChainQA && uc.chain != nil && uc.chain.Available() {
		g.Go(func() error {
			sourceStart := time.Now()
			answer := uc.chain.Ask(gctx, cleaned)
			chainResult = &answer
			usedChain = true
			if answer.OK() {
				uc.recordSource(domain.MethodSPARQLChain, "ok", sourceStart)
			} else {
				uc.logger.Warn("sparql_chain_degraded", "error", answer.Err)
				uc.recordSource(domain.MethodSPARQLChain, "error", sourceStart)
			}
			return nil
		})
	}

	if structuredIntents[cls.Primary] && uc.planner != nil && uc.graph != nil {
		g.Go(func() error {
			sourceStart := time.Now()
			specs := uc.planner.Plan(cls, concepts)
			for _, spec := range specs {
				rows, err := uc.graph.Select(gctx, spec.Query)
				if err != nil {
					uc.logger.Warn("direct_sparql_failed", "query_type", spec.Type, "error", err)
					continue
				}
				if len(rows) == 0 {
					continue
				}
				directResults = append(directResults, domain.StructuredResult{Spec: spec, Rows: rows})
			}
			usedDirect = true
			uc.recordSource(domain.MethodDirectSPARQL, "ok", sourceStart)
			return nil
		})
	}

	// Sources never return errors; Wait only joins them.
	_ = g.Wait()

	result.SemanticHits = hits
	result.ChainResult = chainResult
	result.DirectResults = directResults
	if usedSemantic {
		result.Methods = append(result.Methods, domain.MethodVectorSearch)
	}
	if usedChain {
		result.Methods = append(result.Methods, domain.MethodSPARQLChain)
	}
	if usedDirect {
		result.Methods = append(result.Methods, domain.MethodDirectSPARQL)
	}

	uc.enrichTopHits(ctx, result.SemanticHits)

	if len(result.SemanticHits) == 0 && (result.ChainResult == nil || !result.ChainResult.OK()) {
		result.SchemaFallback = uc.schemaFallback(ctx)
	}

	result.Context = BuildContext(result)

	uc.logger.Info("query_processed",
		"intent", string(cls.Primary),
		"methods", strings.Join(result.Methods, ","),
		"entities", len(result.SemanticHits),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if uc.metrics != nil {
		uc.metrics.RecordQuery("api", string(cls.Primary), len(result.SemanticHits), result.SchemaFallback != nil, time.Since(start))
		uc.metrics.RecordContextSize("api", len(result.Context))
	}
	return result, nil
}

func (uc *ProcessQueryUseCase) recordSource(source, outcome string, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordSourceOutcome("api", source, outcome, time.Since(start))
}

func (uc *ProcessQueryUseCase) schemaFallback(ctx context.Context) *domain.SchemaOverview {
	if uc.metadata == nil {
		return nil
	}
	overview, err := uc.metadata.Overview(ctx)
	if err != nil {
		uc.logger.Warn("schema_overview_failed", "error", err)
		return nil
	}
	return &overview
}
