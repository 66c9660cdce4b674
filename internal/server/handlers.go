package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/recommendation"
	"github.com/jonathan/aeo-insights/internal/types"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; score requests carry whole documents.
const maxBodyBytes = 2 << 20

// identifyBody is the JSON body of POST /brands/{brand_id}/opportunities
type identifyBody struct {
	CustomerID   string   `json:"customer_id"`
	LookbackDays int      `json:"lookback_days,omitempty"`
	Collectors   []string `json:"collectors,omitempty"`
	Topic        string   `json:"topic,omitempty"`
}

// recommendBody is the JSON body of POST /brands/{brand_id}/recommendations
type recommendBody struct {
	CustomerID string `json:"customer_id"`
}

// recommendResponse is the body of a recommendations reply. Status is
// "success" or "no_opportunities".
type recommendResponse struct {
	Status          string                 `json:"status"`
	Message         string                 `json:"message,omitempty"`
	Batch           *types.GenerationBatch `json:"batch,omitempty"`
	Recommendations []types.Recommendation `json:"recommendations"`
}

// scoreResponse is a score result with the breakdown also listed in rubric order
type scoreResponse struct {
	TotalScore  int            `json:"totalScore"`
	MaxScore    int            `json:"maxScore"`
	ContentType string         `json:"contentType"`
	Breakdown   any            `json:"breakdown"`
	Dimensions  []dimensionRow `json:"dimensions"`
}

type dimensionRow struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Max      int    `json:"max"`
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is required"}
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: "request body too large"}
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return err
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleIdentify returns the ranked opportunity report for a brand
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var body identifyBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.runner.Identify(r.Context(), types.IdentifyOpportunitiesRequest{
		BrandID:      r.PathValue("brand_id"),
		CustomerID:   body.CustomerID,
		LookbackDays: body.LookbackDays,
		Collectors:   body.Collectors,
		Topic:        body.Topic,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleRecommend drafts and persists recommendations for a brand's top opportunities
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var body recommendBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Convert(r.Context(), types.ConvertRecommendationsRequest{
		BrandID:    r.PathValue("brand_id"),
		CustomerID: body.CustomerID,
	})
	switch {
	case errors.Is(err, recommendation.ErrNoOpportunities):
		s.jsonResponse(w, http.StatusOK, recommendResponse{
			Status:          "no_opportunities",
			Message:         "no opportunities found for this brand",
			Recommendations: []types.Recommendation{},
		})
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}

	logging.Info("recommendations generated",
		zap.String("brand_id", r.PathValue("brand_id")),
		zap.String("batch_id", result.Batch.ID.String()),
		zap.Int("count", len(result.Recommendations)),
	)
	s.jsonResponse(w, http.StatusOK, recommendResponse{
		Status:          "success",
		Batch:           &result.Batch,
		Recommendations: result.Recommendations,
	})
}

// handleScore rates a piece of content against its type's rubric
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreContentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, outcome := s.scorer.Score(r.Context(), req.ContentType, req.RawText)

	rows := make([]dimensionRow, 0, len(res.Breakdown))
	for _, d := range res.Dimensions() {
		rows = append(rows, dimensionRow{
			Name:     d.Name,
			Score:    d.Score,
			Max:      d.Max,
			Status:   string(d.Status),
			Feedback: d.Feedback,
		})
	}

	w.Header().Set("X-Cache", outcome)
	s.jsonResponse(w, http.StatusOK, scoreResponse{
		TotalScore:  res.TotalScore,
		MaxScore:    res.MaxScore,
		ContentType: string(res.ContentType),
		Breakdown:   res.Breakdown,
		Dimensions:  rows,
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		logging.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
