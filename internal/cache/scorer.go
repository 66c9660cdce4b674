package cache

import (
	"context"

	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/observability"
	"github.com/jonathan/aeo-insights/internal/scoring"
	"go.uber.org/zap"
)

// Cache outcome labels
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeDisabled = "disabled"
)

// Scorer scores content through an optional cache. The zero value scores
// without caching. Cache failures are logged and never fail a request.
type Scorer struct {
	Cache *Client
}

// Score rates rawText against the rubric of contentType and reports the cache outcome.
func (s *Scorer) Score(ctx context.Context, contentType, rawText string) (scoring.Result, string) {
	ct, ok := scoring.ParseContentType(contentType)
	if !ok {
		ct = scoring.ContentArticle
	}

	if s == nil || s.Cache == nil {
		res := scoring.ScoreAs(ct, rawText)
		observability.ScoreRequests.WithLabelValues(string(ct), OutcomeDisabled).Inc()
		return res, OutcomeDisabled
	}

	cached, found, err := s.Cache.GetScore(ctx, ct, rawText)
	if err != nil {
		logging.Warn("score cache read failed", zap.String("content_type", string(ct)), zap.Error(err))
	}
	if found {
		observability.ScoreRequests.WithLabelValues(string(ct), OutcomeHit).Inc()
		return *cached, OutcomeHit
	}

	res := scoring.ScoreAs(ct, rawText)
	if err := s.Cache.SetScore(ctx, ct, rawText, &res); err != nil {
		logging.Warn("score cache write failed", zap.String("content_type", string(ct)), zap.Error(err))
	}
	observability.ScoreRequests.WithLabelValues(string(ct), OutcomeMiss).Inc()
	return res, OutcomeMiss
}
