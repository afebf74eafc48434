package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

const (
	maxEnrichedHits    = 5
	maxRelatedEntities = 8
	maxInstances       = 5
	maxSiblings        = 5
	maxUsageExamples   = 3
)

// enrichTopHits attaches bounded follow-up lookups to the best semantic
// hits, in place. Every lookup fails soft: a failed field is omitted and
// the base hit survives untouched.
func (uc *ProcessQueryUseCase) enrichTopHits(ctx context.Context, hits []domain.SemanticHit) {
	if uc.metadata == nil || len(hits) == 0 {
		return
	}

	limit := len(hits)
	if limit > maxEnrichedHits {
		limit = maxEnrichedHits
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < limit; i++ {
		hit := &hits[i]
		g.Go(func() error {
			hit.Enrichment = uc.enrichHit(gctx, *hit)
			return nil
		})
	}
	_ = g.Wait()
}

func (uc *ProcessQueryUseCase) enrichHit(ctx context.Context, hit domain.SemanticHit) *domain.Enrichment {
	enr := &domain.Enrichment{}

	related, err := uc.metadata.RelatedEntities(ctx, hit.URI, maxRelatedEntities)
	if err != nil {
		uc.logger.Warn("enrich_related_failed", "uri", hit.URI, "error", err)
	} else {
		enr.Related = related
	}

	if hit.IsClass() {
		instances, err := uc.metadata.ClassInstances(ctx, hit.URI, maxInstances)
		if err != nil {
			uc.logger.Warn("enrich_instances_failed", "uri", hit.URI, "error", err)
		} else {
			enr.Instances = instances
		}

		siblings, err := uc.metadata.SiblingClasses(ctx, hit.URI, maxSiblings)
		if err != nil {
			uc.logger.Warn("enrich_siblings_failed", "uri", hit.URI, "error", err)
		} else {
			enr.Siblings = siblings
		}
	}

	if hit.IsProperty() {
		usage, err := uc.metadata.PropertyUsage(ctx, hit.URI, maxUsageExamples)
		if err != nil {
			uc.logger.Warn("enrich_usage_failed", "uri", hit.URI, "error", err)
		} else {
			enr.UsageExamples = usage
		}
	}

	if len(enr.Related) == 0 && len(enr.Instances) == 0 && len(enr.Siblings) == 0 && len(enr.UsageExamples) == 0 {
		return nil
	}
	return enr
}
