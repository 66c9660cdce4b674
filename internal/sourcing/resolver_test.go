package sourcing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/llm"
	"github.com/jonathan/aeo-insights/internal/llm/llmtest"
	"github.com/jonathan/aeo-insights/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	q1 = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	q2 = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testRequest() Request {
	return Request{
		BrandName:         "Acme",
		BrandDomain:       "https://www.acme.com",
		CompetitorDomains: []string{"globex.com", ""},
		Contexts: []types.QueryContext{
			{QueryID: q1, QueryText: "best crm for startups", CandidateDomains: []string{"acme.com", "www.reddit.com", "g2.com", "globex.com"}},
			{QueryID: q2, QueryText: "acme vs globex", CandidateDomains: []string{"g2.com", "techcrunch.com", "G2.com", ""}},
		},
	}
}

func TestResolve_PolicyOnly(t *testing.T) {
	r := NewResolver(nil)

	out := r.Resolve(context.Background(), testRequest())

	require.Len(t, out, 2)
	assert.Len(t, out[q1], 4)
	assert.Len(t, out[q2], 2)

	assert.Equal(t, types.ContributionDirectPublish, out[q1]["acme.com"].ContributionModel)
	assert.Equal(t, types.ActionPost, out[q1]["reddit.com"].RecommendedActionVerb)
	assert.Equal(t, types.ActionMonitorCounter, out[q1]["globex.com"].RecommendedActionVerb)
	assert.Equal(t, types.ActionMonitorCounter, out[q1]["g2.com"].RecommendedActionVerb)
	assert.Equal(t, types.ActionPitch, out[q2]["techcrunch.com"].RecommendedActionVerb)

	// same domain is classified independently per query
	assert.Equal(t, q1, out[q1]["g2.com"].QueryID)
	assert.Equal(t, q2, out[q2]["g2.com"].QueryID)
}

func TestResolve_RefinesUnknownDomainsInOneCall(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return fmt.Sprintf("```json\n"+`{"domains":[
				{"query_id":"%s","domain":"g2.com","contribution_model":"community","recommended_action_verb":"Post","best_content_types":["review","review",""],"rationale":"Users leave reviews."},
				{"query_id":"%s","domain":"g2.com","contribution_model":"paid_placement","best_content_types":["sponsored_listing"],"rationale":"Listings can be sponsored."}
			]}`+"\n```", q1, q2), nil
		},
	}
	r := NewResolver(mock)

	out := r.Resolve(context.Background(), testRequest())

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.TierLite, calls[0].Tier)
	assert.Contains(t, calls[0].Prompt, "g2.com")
	assert.NotContains(t, calls[0].Prompt, "reddit.com")
	assert.Contains(t, calls[0].Prompt, "Brand: Acme")

	got := out[q1]["g2.com"]
	assert.Equal(t, types.ContributionCommunity, got.ContributionModel)
	assert.Equal(t, types.ActionPost, got.RecommendedActionVerb)
	assert.Equal(t, []string{"review"}, got.BestContentTypes)
	assert.Equal(t, "Users leave reviews.", got.Rationale)

	paid := out[q2]["g2.com"]
	assert.Equal(t, types.ContributionPaidPlacement, paid.ContributionModel)
	assert.Equal(t, types.ActionSponsor, paid.RecommendedActionVerb)

	// policy entries untouched
	assert.Equal(t, types.ContributionDirectPublish, out[q1]["acme.com"].ContributionModel)
}

func TestResolve_GuardrailsOverrideModel(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return fmt.Sprintf(`{"domains":[
				{"query_id":"%s","domain":"g2.com","contribution_model":"direct_publish","recommended_action_verb":"Publish","best_content_types":["article"]},
				{"query_id":"%s","domain":"globex.com","contribution_model":"community","recommended_action_verb":"Post","best_content_types":["article"]},
				{"query_id":"%s","domain":"unrequested.com","contribution_model":"community"},
				{"query_id":"not-a-uuid","domain":"g2.com","contribution_model":"community"}
			]}`, q1, q1, q1), nil
		},
	}
	r := NewResolver(mock)

	out := r.Resolve(context.Background(), testRequest())

	g2 := out[q1]["g2.com"]
	assert.Equal(t, types.ContributionEarnedMedia, g2.ContributionModel)
	assert.Equal(t, types.ActionMonitorCounter, g2.RecommendedActionVerb)
	assert.Empty(t, g2.BestContentTypes)

	comp := out[q1]["globex.com"]
	assert.Equal(t, types.ActionMonitorCounter, comp.RecommendedActionVerb)
	assert.Empty(t, comp.BestContentTypes)

	_, ok := out[q1]["unrequested.com"]
	assert.False(t, ok)
}

func TestResolve_PitchVerbKeepsContentTypes(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return fmt.Sprintf(`{"domains":[{"query_id":"%s","domain":"g2.com","contribution_model":"earned_media","recommended_action_verb":"pitch","best_content_types":["case_study"]}]}`, q1), nil
		},
	}

	out := NewResolver(mock).Resolve(context.Background(), testRequest())

	assert.Equal(t, types.ActionPitch, out[q1]["g2.com"].RecommendedActionVerb)
	assert.Equal(t, []string{"case_study"}, out[q1]["g2.com"].BestContentTypes)
}

func TestResolve_NoUnknownDomainsSkipsLLM(t *testing.T) {
	mock := &llmtest.MockClient{}
	req := Request{
		BrandDomain: "acme.com",
		Contexts: []types.QueryContext{
			{QueryID: q1, QueryText: "q", CandidateDomains: []string{"acme.com", "reddit.com"}},
		},
	}

	out := NewResolver(mock).Resolve(context.Background(), req)

	assert.Len(t, out[q1], 2)
	assert.Empty(t, mock.Calls())
}

func TestResolve_FailuresDegradeToEmptyMap(t *testing.T) {
	tests := []struct {
		name string
		resp string
		err  error
	}{
		{name: "llm error", err: errors.New("upstream unavailable")},
		{name: "malformed json", resp: `{"domains": [`},
		{name: "schema failure", resp: `{"domains":[{"domain":"g2.com"}]}`},
		{name: "not an object", resp: `no json here`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &llmtest.MockClient{
				GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
					return tt.resp, tt.err
				},
			}

			out := NewResolver(mock).Resolve(context.Background(), testRequest())

			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestResolve_QueryTextWithPlaceholderSyntax(t *testing.T) {
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
			return fmt.Sprintf(`{"domains":[{"query_id":"%s","domain":"g2.com","contribution_model":"community","recommended_action_verb":"Post","best_content_types":["review"],"rationale":"Reviews."}]}`, q1), nil
		},
	}
	req := Request{
		BrandName:   "{{.Pairs}}",
		BrandDomain: "acme.com",
		Contexts: []types.QueryContext{
			{QueryID: q1, QueryText: "how to use {{.Title}} templates in hugo", CandidateDomains: []string{"g2.com"}},
		},
	}

	out := NewResolver(client).Resolve(context.Background(), req)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "Brand: {{.Pairs}}")
	assert.Contains(t, calls[0].Prompt, "{{.Title}}")
	require.Contains(t, out, q1)
	assert.Equal(t, types.ContributionCommunity, out[q1]["g2.com"].ContributionModel)
}

func TestResolveError(t *testing.T) {
	cause := errors.New("boom")
	err := &ResolveError{Stage: "generate", Message: "LLM generation failed", Cause: cause}
	assert.Equal(t, "domain resolution generate: LLM generation failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "domain resolution parse: bad", (&ResolveError{Stage: "parse", Message: "bad"}).Error())
}

func TestFormatPairs_Deterministic(t *testing.T) {
	pending := []pendingPair{
		{query: types.QueryContext{QueryID: q2, QueryText: "b"}, host: "z.com"},
		{query: types.QueryContext{QueryID: q1, QueryText: "a"}, host: "y.com"},
		{query: types.QueryContext{QueryID: q1, QueryText: "a"}, host: "x.com"},
	}
	want := fmt.Sprintf("- query_id: %s | query: \"a\" | domain: x.com\n- query_id: %s | query: \"a\" | domain: y.com\n- query_id: %s | query: \"b\" | domain: z.com", q1, q1, q2)
	assert.Equal(t, want, formatPairs(pending))
}
