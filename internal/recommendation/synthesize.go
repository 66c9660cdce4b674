package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/llm"
	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/prompts"
	"github.com/jonathan/aeo-insights/internal/schemas"
	"github.com/jonathan/aeo-insights/internal/sourcing"
	"github.com/jonathan/aeo-insights/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxSourcesPerQuery bounds the citation domains attached to each query context
const maxSourcesPerQuery = 3

// CitationReader reads citation records for a set of queries
type CitationReader interface {
	FetchCitations(ctx context.Context, queryIDs []uuid.UUID) ([]types.Citation, error)
}

// DomainResolver classifies cited domains per query
type DomainResolver interface {
	Resolve(ctx context.Context, req sourcing.Request) types.DomainClassifications
}

// Store persists a generation batch and its recommendations atomically
type Store interface {
	SaveRecommendationBatch(ctx context.Context, batch types.GenerationBatch, recs []types.Recommendation) error
}

// Synthesizer drafts recommendations for the top opportunity-bearing queries
type Synthesizer struct {
	Client     llm.Client
	Resolver   DomainResolver
	Citations  CitationReader
	Store      Store
	TopQueries int
	Now        func() time.Time
}

// Input is one synthesis run for a brand
type Input struct {
	Brand         *types.BrandContext
	Opportunities []types.Opportunity
	// SourcesAttached means TopSources on the opportunities already holds the
	// cited domains of each query, so citations are not read again.
	SourcesAttached bool
}

// Synthesize selects the top queries, drafts one recommendation per query with
// a single generative call and persists the batch. A nil Store skips persistence.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (result *types.RecommendationResult, err error) {
	ctx, span := observability.StartSpan(ctx, "recommendation.Synthesize",
		attribute.Int("opportunities", len(in.Opportunities)))
	defer func() { observability.EndSpan(span, err) }()

	if in.Brand == nil {
		return nil, fmt.Errorf("brand context is required")
	}
	if len(in.Opportunities) == 0 {
		return nil, ErrNoOpportunities
	}

	groups := SelectTopQueries(in.Opportunities, s.TopQueries)
	contexts := s.buildContexts(ctx, groups, in.SourcesAttached)

	var classifications types.DomainClassifications
	if s.Resolver != nil {
		classifications = s.Resolver.Resolve(ctx, sourcing.Request{
			BrandName:         in.Brand.Brand.Name,
			BrandDomain:       in.Brand.Brand.HomepageDomain,
			CompetitorDomains: in.Brand.CompetitorDomains(),
			Contexts:          contexts,
		})
	}

	items, err := s.generate(ctx, in.Brand, groups, contexts, classifications)
	if err != nil {
		return nil, err
	}

	batch := types.GenerationBatch{
		ID:         uuid.New(),
		BrandID:    in.Brand.Brand.ID,
		CustomerID: in.Brand.Brand.CustomerID,
		CreatedAt:  s.now().UTC(),
	}
	recs, missing := s.mapItems(batch.ID, groups, items)
	if len(recs) == 0 {
		return nil, &GenerationError{Message: "response contained no recommendations for the selected queries"}
	}
	batch.RecommendationCount = len(recs)
	batch.SelectedQueryCount = len(groups)
	batch.MissingQueryIDs = missing

	if s.Store != nil {
		if err := s.Store.SaveRecommendationBatch(ctx, batch, recs); err != nil {
			return nil, fmt.Errorf("failed to persist recommendation batch: %w", err)
		}
	}

	logging.Info("recommendations generated",
		zap.String("batch_id", batch.ID.String()),
		zap.String("brand_id", batch.BrandID.String()),
		zap.Int("queries", len(groups)),
		zap.Int("recommendations", len(recs)),
		zap.Int("missing", len(missing)),
	)

	return &types.RecommendationResult{Batch: batch, Recommendations: recs}, nil
}

func (s *Synthesizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// buildContexts attaches the most cited domains to each selected query, either
// from the sources already on the opportunities or from one citation read for
// all queries. A failed read leaves contexts without domains.
func (s *Synthesizer) buildContexts(ctx context.Context, groups []QueryGroup, attached bool) []types.QueryContext {
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.QueryID)
	}

	var top map[uuid.UUID][]string
	switch {
	case attached:
		top = make(map[uuid.UUID][]string, len(groups))
		for _, g := range groups {
			if sources := g.Top().TopSources; len(sources) > 0 {
				top[g.QueryID] = append([]string{}, sources...)
			}
		}
	case s.Citations != nil:
		citations, err := s.Citations.FetchCitations(ctx, ids)
		if err != nil {
			logging.Warn("citation fetch failed, drafting without sources",
				zap.Int("queries", len(ids)),
				zap.Error(err),
			)
		}
		top = sourcing.TopDomains(citations, maxSourcesPerQuery)
	}

	contexts := make([]types.QueryContext, 0, len(groups))
	for _, g := range groups {
		domains := top[g.QueryID]
		if domains == nil {
			domains = []string{}
		}
		contexts = append(contexts, types.QueryContext{
			QueryID:          g.QueryID,
			QueryText:        g.QueryText,
			CandidateDomains: domains,
		})
	}
	return contexts
}

// recommendationItem is one element of the generative recommendation response
type recommendationItem struct {
	QueryID             string   `json:"query_id"`
	Action              string   `json:"action"`
	Channel             string   `json:"channel"`
	ContentType         string   `json:"content_type"`
	Rationale           string   `json:"rationale"`
	ContentTitle        string   `json:"content_title"`
	Timeline            string   `json:"timeline"`
	Effort              string   `json:"effort"`
	ExpectedBoost       string   `json:"expected_boost"`
	Confidence          *float64 `json:"confidence"`
	AmplificationAdvice string   `json:"amplification_advice"`
}

type recommendationResponse struct {
	Recommendations []recommendationItem `json:"recommendations"`
}

func (s *Synthesizer) generate(ctx context.Context, brand *types.BrandContext, groups []QueryGroup, contexts []types.QueryContext, classifications types.DomainClassifications) ([]recommendationItem, error) {
	if s.Client == nil {
		return nil, &GenerationError{Message: "no LLM client configured"}
	}

	system, err := prompts.Get("recommendations.json", "system")
	if err != nil {
		return nil, &GenerationError{Message: "failed to load prompt", Cause: err}
	}
	competitors := strings.Join(brand.CompetitorNames(), ", ")
	if competitors == "" {
		competitors = "None tracked"
	}
	user, err := prompts.Render("recommendations.json", "user", map[string]string{
		"BrandName":   brand.Brand.Name,
		"Competitors": competitors,
		"Queries":     formatQueries(groups, contexts, classifications),
	})
	if err != nil {
		return nil, &GenerationError{Message: "failed to render prompt", Cause: err}
	}

	raw, err := s.Client.GenerateJSON(ctx, system, user, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{Message: "LLM generation failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.Recommendations, raw); err != nil {
		return nil, &GenerationError{Message: "response failed schema validation", Cause: err}
	}

	var resp recommendationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &GenerationError{Message: "failed to parse response", Cause: err}
	}
	if len(resp.Recommendations) == 0 {
		return nil, &GenerationError{Message: "response contained no recommendations"}
	}
	return resp.Recommendations, nil
}

// mapItems pairs response items with selected queries in selection order.
// Unknown query ids are dropped and the first item for a query wins. Selected
// queries without an item are returned as missing, in selection order.
func (s *Synthesizer) mapItems(batchID uuid.UUID, groups []QueryGroup, items []recommendationItem) ([]types.Recommendation, []uuid.UUID) {
	byQuery := make(map[uuid.UUID]recommendationItem, len(items))
	for _, item := range items {
		id, err := uuid.Parse(strings.TrimSpace(item.QueryID))
		if err != nil {
			logging.Debug("dropping recommendation with invalid query id", zap.String("query_id", item.QueryID))
			continue
		}
		if _, dup := byQuery[id]; dup {
			continue
		}
		byQuery[id] = item
	}

	recs := make([]types.Recommendation, 0, len(groups))
	missing := []uuid.UUID{}
	for _, g := range groups {
		item, ok := byQuery[g.QueryID]
		if !ok {
			logging.Warn("no recommendation returned for query",
				zap.String("query_id", g.QueryID.String()),
				zap.String("query", g.QueryText),
			)
			missing = append(missing, g.QueryID)
			continue
		}
		top := g.Top()
		area, kpi := FocusFor(top.Metric)
		recs = append(recs, types.Recommendation{
			ID:                  uuid.New(),
			BatchID:             batchID,
			QueryID:             g.QueryID,
			QueryText:           g.QueryText,
			Action:              strings.TrimSpace(item.Action),
			Channel:             strings.TrimSpace(item.Channel),
			ContentType:         strings.TrimSpace(item.ContentType),
			Rationale:           strings.TrimSpace(item.Rationale),
			ContentTitle:        strings.TrimSpace(item.ContentTitle),
			Timeline:            strings.TrimSpace(item.Timeline),
			Effort:              NormalizeEffort(item.Effort),
			ExpectedBoost:       strings.TrimSpace(item.ExpectedBoost),
			Confidence:          ClampConfidence(item.Confidence),
			AmplificationAdvice: strings.TrimSpace(item.AmplificationAdvice),
			TargetCompetitors:   g.Competitors(),
			FocusArea:           area,
			KPI:                 kpi,
			PriorityScore:       top.PriorityScore,
		})
	}
	return recs, missing
}

// NormalizeEffort maps free text onto Low, Medium or High. Anything else is Medium.
func NormalizeEffort(s string) types.Effort {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l", "small":
		return types.EffortLow
	case "high", "h", "large":
		return types.EffortHigh
	default:
		return types.EffortMedium
	}
}

// ClampConfidence rounds a confidence to an integer in [0, 100]. Missing is 0.
func ClampConfidence(v *float64) int {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	c := math.Round(*v)
	return int(math.Max(0, math.Min(100, c)))
}

func formatQueries(groups []QueryGroup, contexts []types.QueryContext, classifications types.DomainClassifications) string {
	var sb strings.Builder
	for i, g := range groups {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "### query_id: %s\nQuery: %q\nGaps:\n", g.QueryID, g.QueryText)
		for _, o := range g.Opportunities {
			against := "absolute target"
			if o.Competitor != nil {
				against = *o.Competitor
			}
			fmt.Fprintf(&sb, "- %s: brand %.1f vs %.1f (%s), gap %.1f, %s\n",
				o.Metric, o.BrandValue, o.TargetValue, against, o.Gap, o.Severity)
		}

		sb.WriteString("Sources:\n")
		domains := contexts[i].CandidateDomains
		if len(domains) == 0 {
			sb.WriteString("- none recorded\n")
			continue
		}
		for _, d := range domains {
			dc, ok := classifications[g.QueryID][d]
			if !ok {
				fmt.Fprintf(&sb, "- %s\n", d)
				continue
			}
			fmt.Fprintf(&sb, "- %s: %s, %s", d, dc.ContributionModel, dc.RecommendedActionVerb)
			if len(dc.BestContentTypes) > 0 {
				fmt.Fprintf(&sb, " (%s)", strings.Join(dc.BestContentTypes, ", "))
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
