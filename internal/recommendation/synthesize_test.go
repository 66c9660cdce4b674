package recommendation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/llm"
	"github.com/jonathan/aeo-insights/internal/llm/llmtest"
	"github.com/jonathan/aeo-insights/internal/sourcing"
	"github.com/jonathan/aeo-insights/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCitations is a mock implementation of CitationReader
type MockCitations struct {
	mock.Mock
}

func (m *MockCitations) FetchCitations(ctx context.Context, queryIDs []uuid.UUID) ([]types.Citation, error) {
	args := m.Called(ctx, queryIDs)
	c, _ := args.Get(0).([]types.Citation)
	return c, args.Error(1)
}

// MockResolver is a mock implementation of DomainResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, req sourcing.Request) types.DomainClassifications {
	args := m.Called(ctx, req)
	return args.Get(0).(types.DomainClassifications)
}

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRecommendationBatch(ctx context.Context, batch types.GenerationBatch, recs []types.Recommendation) error {
	args := m.Called(ctx, batch, recs)
	return args.Error(0)
}

var (
	brandID    = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	customerID = uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
	qa         = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	qb         = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	qc         = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func strPtr(s string) *string { return &s }

func testBrand() *types.BrandContext {
	return &types.BrandContext{
		Brand: types.Brand{ID: brandID, CustomerID: customerID, Name: "Acme", HomepageDomain: "acme.com"},
		Competitors: []types.Competitor{
			{ID: uuid.New(), Name: "Globex", Domain: "globex.com"},
			{ID: uuid.New(), Name: "Initech", Domain: "initech.io"},
		},
	}
}

func testOpportunities() []types.Opportunity {
	return []types.Opportunity{
		{ID: "a-soa-Globex", QueryID: qa, QueryText: "acme vs globex", Metric: types.MetricSoA, BrandValue: 10, TargetValue: 45, Gap: 35, Severity: types.SeverityCritical, PriorityScore: 35, Competitor: strPtr("Globex")},
		{ID: "b-visibility-none", QueryID: qb, QueryText: "acme pricing", Metric: types.MetricVisibility, BrandValue: 25, TargetValue: 30, Gap: 5, Severity: types.SeverityLow, PriorityScore: 6},
		{ID: "a-sentiment-Initech", QueryID: qa, QueryText: "acme vs globex", Metric: types.MetricSentiment, BrandValue: 50, TargetValue: 57, Gap: 7, Severity: types.SeverityMedium, PriorityScore: 5.6, Competitor: strPtr("Initech")},
		{ID: "c-soa-Globex", QueryID: qc, QueryText: "best crm", Metric: types.MetricSoA, BrandValue: 20, TargetValue: 25, Gap: 5, Severity: types.SeverityLow, PriorityScore: 5, Competitor: strPtr("Globex")},
	}
}

func validResponse(ids ...uuid.UUID) string {
	items := ""
	for i, id := range ids {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"query_id":"%s","action":"Publish comparison","channel":"acme.com","content_type":"comparison_table",
			"rationale":"closes the gap","content_title":"Acme vs Globex","timeline":"2 weeks","effort":"low",
			"expected_boost":"+10 soa","confidence":140,"amplification_advice":"share on reddit"}`, id)
	}
	return `{"recommendations":[` + items + `]}`
}

func TestSelectTopQueries(t *testing.T) {
	groups := SelectTopQueries(testOpportunities(), 2)

	require.Len(t, groups, 2)
	assert.Equal(t, qa, groups[0].QueryID)
	assert.Len(t, groups[0].Opportunities, 2)
	assert.Equal(t, "a-soa-Globex", groups[0].Top().ID)
	assert.Equal(t, []string{"Globex", "Initech"}, groups[0].Competitors())
	assert.Equal(t, qb, groups[1].QueryID)
	assert.Empty(t, groups[1].Competitors())
	assert.NotNil(t, groups[1].Competitors())
}

func TestSelectTopQueries_DefaultAndFewer(t *testing.T) {
	groups := SelectTopQueries(testOpportunities(), 0)
	assert.Len(t, groups, 3)
	assert.Empty(t, SelectTopQueries(nil, 5))
}

func TestNormalizeEffort(t *testing.T) {
	assert.Equal(t, types.EffortLow, NormalizeEffort(" LOW "))
	assert.Equal(t, types.EffortHigh, NormalizeEffort("High"))
	assert.Equal(t, types.EffortMedium, NormalizeEffort("medium"))
	assert.Equal(t, types.EffortMedium, NormalizeEffort(""))
	assert.Equal(t, types.EffortMedium, NormalizeEffort("huge"))
}

func TestClampConfidence(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	assert.Equal(t, 0, ClampConfidence(nil))
	assert.Equal(t, 0, ClampConfidence(f(-5)))
	assert.Equal(t, 100, ClampConfidence(f(140)))
	assert.Equal(t, 73, ClampConfidence(f(72.6)))
}

func TestFocusFor(t *testing.T) {
	area, kpi := FocusFor(types.MetricSoA)
	assert.Equal(t, "Share of Answer", area)
	assert.NotEmpty(t, kpi)

	area, kpi = FocusFor(types.Metric("other"))
	assert.Equal(t, "other", area)
	assert.Equal(t, "other", kpi)
}

func TestSynthesize_Success(t *testing.T) {
	ctx := context.Background()
	citations := &MockCitations{}
	citations.On("FetchCitations", mock.Anything, []uuid.UUID{qa, qb}).Return([]types.Citation{
		{QueryID: qa, Domain: "reddit.com", UsageCount: 9},
		{QueryID: qa, Domain: "globex.com", UsageCount: 5},
		{QueryID: qa, Domain: "g2.com", UsageCount: 4},
		{QueryID: qa, Domain: "capterra.com", UsageCount: 1},
	}, nil)

	resolver := &MockResolver{}
	resolver.On("Resolve", mock.Anything, mock.MatchedBy(func(req sourcing.Request) bool {
		return req.BrandDomain == "acme.com" &&
			len(req.Contexts) == 2 &&
			assert.ObjectsAreEqual([]string{"reddit.com", "globex.com", "g2.com"}, req.Contexts[0].CandidateDomains) &&
			len(req.Contexts[1].CandidateDomains) == 0
	})).Return(types.DomainClassifications{
		qa: {"reddit.com": {Domain: "reddit.com", QueryID: qa, ContributionModel: types.ContributionCommunity, RecommendedActionVerb: types.ActionPost, BestContentTypes: []string{"social_thread"}}},
	})

	store := &MockStore{}
	store.On("SaveRecommendationBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return "```json\n" + validResponse(qb, qa, qa, uuid.New()) + "\n```", nil
		},
	}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Synthesizer{
		Client:     client,
		Resolver:   resolver,
		Citations:  citations,
		Store:      store,
		TopQueries: 2,
		Now:        func() time.Time { return fixed },
	}

	result, err := s.Synthesize(ctx, Input{Brand: testBrand(), Opportunities: testOpportunities()})
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.TierStandard, calls[0].Tier)
	assert.Contains(t, calls[0].Prompt, "Competitors: Globex, Initech")
	assert.Contains(t, calls[0].Prompt, "- reddit.com: community, Post (social_thread)")
	assert.Contains(t, calls[0].Prompt, "- globex.com\n")
	assert.Contains(t, calls[0].Prompt, "- none recorded")
	assert.NotContains(t, calls[0].Prompt, "best crm")

	assert.Equal(t, brandID, result.Batch.BrandID)
	assert.Equal(t, customerID, result.Batch.CustomerID)
	assert.Equal(t, fixed, result.Batch.CreatedAt)
	assert.Equal(t, 2, result.Batch.RecommendationCount)
	assert.Equal(t, 2, result.Batch.SelectedQueryCount)
	assert.Empty(t, result.Batch.MissingQueryIDs)

	require.Len(t, result.Recommendations, 2)
	first := result.Recommendations[0]
	assert.Equal(t, qa, first.QueryID)
	assert.Equal(t, result.Batch.ID, first.BatchID)
	assert.Equal(t, []string{"Globex", "Initech"}, first.TargetCompetitors)
	assert.Equal(t, "Share of Answer", first.FocusArea)
	assert.Equal(t, 35.0, first.PriorityScore)
	assert.Equal(t, types.EffortLow, first.Effort)
	assert.Equal(t, 100, first.Confidence)

	second := result.Recommendations[1]
	assert.Equal(t, qb, second.QueryID)
	assert.Equal(t, "Visibility", second.FocusArea)
	assert.Empty(t, second.TargetCompetitors)

	store.AssertCalled(t, "SaveRecommendationBatch", mock.Anything, result.Batch, result.Recommendations)
	citations.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestSynthesize_MissingQueryStillSucceeds(t *testing.T) {
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return validResponse(qc), nil
		},
	}
	s := &Synthesizer{Client: client}

	result, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: testOpportunities()})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, qc, result.Recommendations[0].QueryID)
	assert.Equal(t, 1, result.Batch.RecommendationCount)
	assert.Equal(t, 3, result.Batch.SelectedQueryCount)
	assert.Equal(t, []uuid.UUID{qa, qb}, result.Batch.MissingQueryIDs)
}

func TestSynthesize_AttachedSourcesSkipCitationRead(t *testing.T) {
	opps := testOpportunities()
	for i := range opps {
		if opps[i].QueryID == qa {
			opps[i].TopSources = []string{"reddit.com", "g2.com"}
		}
	}
	citations := &MockCitations{}
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return validResponse(qa), nil
		},
	}
	s := &Synthesizer{Client: client, Citations: citations, TopQueries: 1}

	_, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: opps, SourcesAttached: true})
	require.NoError(t, err)

	citations.AssertNotCalled(t, "FetchCitations", mock.Anything, mock.Anything)
	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "- reddit.com\n- g2.com")
}

func TestSynthesize_QueryTextWithPlaceholderSyntax(t *testing.T) {
	opps := []types.Opportunity{
		{ID: "h-visibility-none", QueryID: qa, QueryText: "how to use {{.Title}} templates in hugo", Metric: types.MetricVisibility, BrandValue: 10, TargetValue: 30, Gap: 20, Severity: types.SeverityHigh, PriorityScore: 24},
	}
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return validResponse(qa), nil
		},
	}
	s := &Synthesizer{Client: client}

	result, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: opps})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "{{.Title}}")
}

func TestSynthesize_NoOpportunities(t *testing.T) {
	client := &llmtest.MockClient{}
	s := &Synthesizer{Client: client}

	_, err := s.Synthesize(context.Background(), Input{Brand: testBrand()})
	assert.ErrorIs(t, err, ErrNoOpportunities)
	assert.Empty(t, client.Calls())
}

func TestSynthesize_GenerationFailuresPersistNothing(t *testing.T) {
	tests := []struct {
		name string
		resp string
		err  error
	}{
		{name: "llm error", err: context.DeadlineExceeded},
		{name: "empty list", resp: `{"recommendations":[]}`},
		{name: "malformed", resp: `{"recommendations":[`},
		{name: "schema failure", resp: `{"recommendations":[{"query_id":"x"}]}`},
		{name: "only unknown queries", resp: validResponse(uuid.New())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			client := &llmtest.MockClient{
				GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
					return tt.resp, tt.err
				},
			}
			s := &Synthesizer{Client: client, Store: store}

			result, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: testOpportunities()})

			assert.Nil(t, result)
			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr), "got %v", err)
			assert.NotErrorIs(t, err, ErrNoOpportunities)
			store.AssertNotCalled(t, "SaveRecommendationBatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSynthesize_TimeoutIsGenerationError(t *testing.T) {
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	s := &Synthesizer{Client: client}

	_, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: testOpportunities()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynthesize_CitationFailureIsNotFatal(t *testing.T) {
	citations := &MockCitations{}
	citations.On("FetchCitations", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return validResponse(qa, qb, qc), nil
		},
	}
	s := &Synthesizer{Client: client, Citations: citations}

	result, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: testOpportunities()})
	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 3)
}

func TestSynthesize_PersistFailure(t *testing.T) {
	store := &MockStore{}
	store.On("SaveRecommendationBatch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("tx aborted"))
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return validResponse(qa), nil
		},
	}
	s := &Synthesizer{Client: client, Store: store}

	_, err := s.Synthesize(context.Background(), Input{Brand: testBrand(), Opportunities: testOpportunities()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist")
	var genErr *GenerationError
	assert.False(t, errors.As(err, &genErr))
}

func TestGenerationError(t *testing.T) {
	err := &GenerationError{Message: "LLM generation failed", Cause: errors.New("quota")}
	assert.Equal(t, "recommendation generation failed: LLM generation failed: quota", err.Error())
	assert.Equal(t, "recommendation generation failed: empty", (&GenerationError{Message: "empty"}).Error())
}
