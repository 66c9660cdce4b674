package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/aggregation"
	"github.com/jonathan/aeo-insights/internal/classification"
	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/opportunity"
	"github.com/jonathan/aeo-insights/internal/sourcing"
	"github.com/jonathan/aeo-insights/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// topSourcesPerOpportunity bounds the citation domains attached to an opportunity
const topSourcesPerOpportunity = 3

// Identify computes the ranked opportunity report for a brand
func (s *Service) Identify(ctx context.Context, req types.IdentifyOpportunitiesRequest) (*types.OpportunityReport, error) {
	report, _, err := s.identify(ctx, req)
	return report, err
}

func (s *Service) identify(ctx context.Context, req types.IdentifyOpportunitiesRequest) (report *types.OpportunityReport, brand *types.BrandContext, err error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.Identify",
		attribute.String("brand_id", req.BrandID),
		attribute.String("customer_id", req.CustomerID),
	)
	defer func() {
		observability.EndSpan(span, err)
		observability.IdentifyRuns.WithLabelValues(runOutcome(err)).Inc()
	}()

	if err := req.Validate(); err != nil {
		return nil, nil, &ValidationError{Message: "identify request", Cause: err}
	}
	brandID := uuid.MustParse(req.BrandID)
	customerID := uuid.MustParse(req.CustomerID)

	days := req.LookbackDays
	if days <= 0 {
		days = s.opts.LookbackDays
	}
	dateRange := types.LookbackRange(s.opts.Now().UTC(), days)

	s.emitProgress("fetch", "Loading brand context and metrics", nil)

	// Brand context and metrics are independent reads
	g, gCtx := errgroup.WithContext(ctx)
	var agg *aggregation.Result

	g.Go(func() error {
		bc, err := s.brands.GetBrandContext(gCtx, brandID, customerID)
		if err != nil {
			return fmt.Errorf("failed to load brand: %w", err)
		}
		if bc == nil {
			return &NotFoundError{Resource: "brand", ID: req.BrandID}
		}
		brand = bc
		return nil
	})

	g.Go(func() error {
		result, err := aggregation.Aggregate(gCtx, s.metrics, aggregation.Params{
			BrandID:    brandID,
			CustomerID: customerID,
			DateRange:  dateRange,
			Collectors: req.Collectors,
			Topic:      req.Topic,
		})
		if err != nil {
			return fmt.Errorf("metrics aggregation failed: %w", err)
		}
		agg = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	s.emitProgress("evaluate", fmt.Sprintf("Evaluating %d queries", len(agg.Queries)), nil)

	var opps []types.Opportunity
	for _, q := range agg.Queries {
		cls := classification.ClassifyForBrand(q.QueryText, brand)
		opps = append(opps, opportunity.Evaluate(q, cls, agg.CompetitorsFor(q.QueryID))...)
	}
	ranked := opportunity.Rank(opps)

	s.attachSources(ctx, ranked)

	for _, o := range ranked {
		observability.OpportunitiesIdentified.WithLabelValues(string(o.Severity)).Inc()
	}

	if len(agg.FailedScopes) > 0 {
		logging.Warn("opportunity report built from partial metrics",
			zap.String("brand_id", req.BrandID),
			zap.String("failed_scopes", strings.Join(agg.FailedScopes, ",")),
		)
	}

	report = &types.OpportunityReport{
		BrandID:              brandID,
		CustomerID:           customerID,
		DateRange:            dateRange,
		TotalQueriesAnalyzed: len(agg.Queries),
		Opportunities:        ranked,
		Summary:              types.Summarize(ranked),
	}

	s.emitProgress("done", fmt.Sprintf("Found %d opportunities", len(ranked)), report)
	logging.Info("opportunities identified",
		zap.String("brand_id", req.BrandID),
		zap.Int("queries", report.TotalQueriesAnalyzed),
		zap.Int("opportunities", len(ranked)),
	)
	return report, brand, nil
}

// attachSources reads citations once for every opportunity-bearing query and
// fills TopSources. A failed read leaves the sources empty.
func (s *Service) attachSources(ctx context.Context, opps []types.Opportunity) {
	if len(opps) == 0 || s.citations == nil {
		return
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, o := range opps {
		if !seen[o.QueryID] {
			seen[o.QueryID] = true
			ids = append(ids, o.QueryID)
		}
	}

	citations, err := s.citations.FetchCitations(ctx, ids)
	if err != nil {
		logging.Warn("citation fetch failed, opportunities returned without sources",
			zap.Int("queries", len(ids)),
			zap.Error(err),
		)
		return
	}

	top := sourcing.TopDomains(citations, topSourcesPerOpportunity)
	for i := range opps {
		if domains, ok := top[opps[i].QueryID]; ok {
			opps[i].TopSources = append([]string{}, domains...)
		}
	}
}
