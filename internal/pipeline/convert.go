package pipeline

import (
	"context"
	"errors"

	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/recommendation"
	"github.com/jonathan/aeo-insights/internal/types"
	"go.opentelemetry.io/otel/attribute"
)

// Convert identifies opportunities for the brand and drafts one recommendation
// per top query. It returns recommendation.ErrNoOpportunities when there is
// nothing to draft and a *recommendation.GenerationError when drafting fails.
func (s *Service) Convert(ctx context.Context, req types.ConvertRecommendationsRequest) (result *types.RecommendationResult, err error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.Convert",
		attribute.String("brand_id", req.BrandID),
		attribute.String("customer_id", req.CustomerID),
	)
	defer func() {
		observability.EndSpan(span, err)
		observability.RecommendationRuns.WithLabelValues(runOutcome(err)).Inc()
	}()

	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: "convert request", Cause: err}
	}

	report, brand, err := s.identify(ctx, types.IdentifyOpportunitiesRequest{
		BrandID:    req.BrandID,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return nil, err
	}
	if len(report.Opportunities) == 0 {
		return nil, recommendation.ErrNoOpportunities
	}

	s.emitProgress("synthesize", "Drafting recommendations", nil)

	return s.synthesizer.Synthesize(ctx, recommendation.Input{
		Brand:           brand,
		Opportunities:   report.Opportunities,
		SourcesAttached: true,
	})
}

// runOutcome labels a finished run for metrics
func runOutcome(err error) string {
	var (
		notFound   *NotFoundError
		invalid    *ValidationError
		generation *recommendation.GenerationError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommendation.ErrNoOpportunities):
		return "no_opportunities"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalid):
		return "invalid"
	case errors.As(err, &generation):
		return "generation_failed"
	default:
		return "error"
	}
}
