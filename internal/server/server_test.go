package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/pipeline"
	"github.com/jonathan/aeo-insights/internal/recommendation"
	"github.com/jonathan/aeo-insights/internal/scoring"
	"github.com/jonathan/aeo-insights/internal/server/ratelimit"
	"github.com/jonathan/aeo-insights/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testBrandID    = "6f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f"
	testCustomerID = "0b1c2d3e-4f5a-4b6c-9d7e-8f9a0b1c2d3e"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Identify(ctx context.Context, req types.IdentifyOpportunitiesRequest) (*types.OpportunityReport, error) {
	args := m.Called(ctx, req)
	report, _ := args.Get(0).(*types.OpportunityReport)
	return report, args.Error(1)
}

func (m *MockRunner) Convert(ctx context.Context, req types.ConvertRecommendationsRequest) (*types.RecommendationResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*types.RecommendationResult)
	return result, args.Error(1)
}

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, contentType, rawText string) (scoring.Result, string) {
	args := m.Called(ctx, contentType, rawText)
	return args.Get(0).(scoring.Result), args.String(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func newTestServer(t *testing.T, health HealthChecker) (*Server, *MockRunner, *MockScorer) {
	t.Helper()
	runner := &MockRunner{}
	scorer := &MockScorer{}
	s := New(Config{Port: 0}, runner, scorer, health)
	t.Cleanup(s.rateLimiter.Stop)
	return s, runner, scorer
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	t.Run("no dependency", func(t *testing.T) {
		s, _, _ := newTestServer(t, nil)
		w := do(t, s.Handler(), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["status"])
	})

	t.Run("database reachable", func(t *testing.T) {
		s, _, _ := newTestServer(t, stubPinger{})
		w := do(t, s.Handler(), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["database"])
	})

	t.Run("database down", func(t *testing.T) {
		s, _, _ := newTestServer(t, stubPinger{err: errors.New("connection refused")})
		w := do(t, s.Handler(), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", decode(t, w)["status"])
	})
}

func TestIdentify(t *testing.T) {
	t.Run("passes path and body to the runner", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		report := &types.OpportunityReport{
			BrandID:              uuid.MustParse(testBrandID),
			TotalQueriesAnalyzed: 3,
			Opportunities:        []types.Opportunity{},
		}
		runner.On("Identify", mock.Anything, types.IdentifyOpportunitiesRequest{
			BrandID:      testBrandID,
			CustomerID:   testCustomerID,
			LookbackDays: 7,
			Collectors:   []string{"chatgpt"},
			Topic:        "pricing",
		}).Return(report, nil).Once()

		body := `{"customer_id":"` + testCustomerID + `","lookback_days":7,"collectors":["chatgpt"],"topic":"pricing"}`
		w := do(t, s.Handler(), http.MethodPost, "/brands/"+testBrandID+"/opportunities", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.EqualValues(t, 3, decode(t, w)["total_queries_analyzed"])
		runner.AssertExpectations(t)
	})

	t.Run("brand not found", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		runner.On("Identify", mock.Anything, mock.Anything).
			Return(nil, &pipeline.NotFoundError{Resource: "brand", ID: testBrandID}).Once()

		w := do(t, s.Handler(), http.MethodPost, "/brands/"+testBrandID+"/opportunities", `{"customer_id":"`+testCustomerID+`"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "not_found", resp["error"])
		assert.Equal(t, "brand not found: "+testBrandID, resp["message"])
	})

	t.Run("invalid request from runner", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		runner.On("Identify", mock.Anything, mock.Anything).
			Return(nil, &pipeline.ValidationError{Message: "identify request"}).Once()

		w := do(t, s.Handler(), http.MethodPost, "/brands/not-a-uuid/opportunities", `{"customer_id":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decode(t, w)["error"])
	})

	t.Run("malformed JSON", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		w := do(t, s.Handler(), http.MethodPost, "/brands/"+testBrandID+"/opportunities", `{"customer_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		runner.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
	})

	t.Run("missing body", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		w := do(t, s.Handler(), http.MethodPost, "/brands/"+testBrandID+"/opportunities", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["message"], "request body is required")
		runner.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
	})

	t.Run("wrong method", func(t *testing.T) {
		s, _, _ := newTestServer(t, nil)
		w := do(t, s.Handler(), http.MethodGet, "/brands/"+testBrandID+"/opportunities", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestRecommend(t *testing.T) {
	path := "/brands/" + testBrandID + "/recommendations"
	body := `{"customer_id":"` + testCustomerID + `"}`
	req := types.ConvertRecommendationsRequest{BrandID: testBrandID, CustomerID: testCustomerID}

	t.Run("success", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		batchID := uuid.New()
		runner.On("Convert", mock.Anything, req).Return(&types.RecommendationResult{
			Batch: types.GenerationBatch{ID: batchID, RecommendationCount: 1, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			Recommendations: []types.Recommendation{
				{ID: uuid.New(), BatchID: batchID, Action: "Publish a comparison table"},
			},
		}, nil).Once()

		w := do(t, s.Handler(), http.MethodPost, path, body)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "success", resp["status"])
		assert.Equal(t, batchID.String(), resp["batch"].(map[string]any)["id"])
		assert.Len(t, resp["recommendations"], 1)
	})

	t.Run("no opportunities is not an error", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		runner.On("Convert", mock.Anything, req).Return(nil, recommendation.ErrNoOpportunities).Once()

		w := do(t, s.Handler(), http.MethodPost, path, body)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "no_opportunities", resp["status"])
		assert.Empty(t, resp["recommendations"])
		assert.NotContains(t, resp, "batch")
	})

	t.Run("generation failure", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		runner.On("Convert", mock.Anything, req).
			Return(nil, &recommendation.GenerationError{Message: "empty response"}).Once()

		w := do(t, s.Handler(), http.MethodPost, path, body)

		require.Equal(t, http.StatusBadGateway, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "generation_failed", resp["error"])
		assert.Equal(t, "recommendation generation failed: empty response", resp["message"])
	})

	t.Run("internal error details are withheld", func(t *testing.T) {
		s, runner, _ := newTestServer(t, nil)
		runner.On("Convert", mock.Anything, req).
			Return(nil, errors.New("failed to persist recommendation batch: pq secret detail")).Once()

		w := do(t, s.Handler(), http.MethodPost, path, body)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "internal_error", resp["error"])
		assert.Equal(t, "internal server error", resp["message"])
	})
}

func TestRecommend_RateLimited(t *testing.T) {
	runner := &MockRunner{}
	s := New(Config{RateLimit: ratelimit.Settings{
		Enabled:              true,
		RecommendationsLimit: 5,
		Window:               time.Hour,
	}}, runner, &MockScorer{}, nil)
	defer s.rateLimiter.Stop()

	runner.On("Convert", mock.Anything, mock.Anything).Return(nil, recommendation.ErrNoOpportunities).Once()

	body := `{"customer_id":"` + testCustomerID + `"}`
	first := do(t, s.Handler(), http.MethodPost, "/brands/"+testBrandID+"/recommendations", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "5", first.Header().Get("X-RateLimit-Limit"))

	second := do(t, s.Handler(), http.MethodPost, "/brands/"+uuid.NewString()+"/recommendations", body)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode(t, second)["error"])
	runner.AssertNumberOfCalls(t, "Convert", 1)

	health := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestScore(t *testing.T) {
	t.Run("scores and reports cache outcome", func(t *testing.T) {
		s, _, scorer := newTestServer(t, nil)
		text := "In short: caching reduces latency because repeated reads skip the database."
		scorer.On("Score", mock.Anything, "article", text).
			Return(scoring.ScoreAs(scoring.ContentArticle, text), "miss").Once()

		payload, err := json.Marshal(types.ScoreContentRequest{ContentType: "article", RawText: text})
		require.NoError(t, err)
		w := do(t, s.Handler(), http.MethodPost, "/aeo/score", string(payload))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "miss", w.Header().Get("X-Cache"))
		resp := decode(t, w)
		assert.Equal(t, "article", resp["contentType"])
		dims := resp["dimensions"].([]any)
		require.NotEmpty(t, dims)
		assert.Len(t, resp["breakdown"], len(dims))
		scorer.AssertExpectations(t)
	})

	t.Run("missing content type falls back to article", func(t *testing.T) {
		s, _, scorer := newTestServer(t, nil)
		text := "Payroll software calculates wages automatically."
		scorer.On("Score", mock.Anything, "", text).
			Return(scoring.ScoreAs(scoring.ContentArticle, text), "disabled").Once()

		payload, err := json.Marshal(types.ScoreContentRequest{RawText: text})
		require.NoError(t, err)
		w := do(t, s.Handler(), http.MethodPost, "/aeo/score", string(payload))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "article", decode(t, w)["contentType"])
		scorer.AssertExpectations(t)
	})

	t.Run("missing text", func(t *testing.T) {
		s, _, scorer := newTestServer(t, nil)
		w := do(t, s.Handler(), http.MethodPost, "/aeo/score", `{"content_type":"article"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		scorer.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCORSPreflight(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	w := do(t, s.Handler(), http.MethodOptions, "/aeo/score", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	w := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractClientID(t *testing.T) {
	s := &Server{}
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", s.extractClientID(r))

	r.RemoteAddr = "garbage"
	assert.Equal(t, "garbage", s.extractClientID(r))
}
