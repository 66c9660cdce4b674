package types

import (
	"time"

	"github.com/google/uuid"
)

// Effort is the estimated effort for a recommendation
type Effort string

// Effort constants
const (
	EffortLow    Effort = "Low"
	EffortMedium Effort = "Medium"
	EffortHigh   Effort = "High"
)

// Recommendation is one drafted content action for one selected query
type Recommendation struct {
	ID                  uuid.UUID `json:"id"`
	BatchID             uuid.UUID `json:"batch_id"`
	QueryID             uuid.UUID `json:"query_id"`
	QueryText           string    `json:"query_text"`
	Action              string    `json:"action"`
	Channel             string    `json:"channel"`
	ContentType         string    `json:"content_type"`
	Rationale           string    `json:"rationale"`
	ContentTitle        string    `json:"content_title"`
	Timeline            string    `json:"timeline"`
	Effort              Effort    `json:"effort"`
	ExpectedBoost       string    `json:"expected_boost"`
	Confidence          int       `json:"confidence"`
	AmplificationAdvice string    `json:"amplification_advice"`
	TargetCompetitors   []string  `json:"target_competitors"`
	FocusArea           string    `json:"focus_area"`
	KPI                 string    `json:"kpi"`
	PriorityScore       float64   `json:"priority_score"`
}

// GenerationBatch groups the recommendations persisted by one conversion run
type GenerationBatch struct {
	ID                  uuid.UUID `json:"id"`
	BrandID             uuid.UUID `json:"brand_id"`
	CustomerID          uuid.UUID `json:"customer_id"`
	CreatedAt           time.Time `json:"created_at"`
	RecommendationCount int       `json:"recommendation_count"`
	// SelectedQueryCount is the number of queries drafting was asked to cover.
	SelectedQueryCount int `json:"selected_query_count"`
	// MissingQueryIDs lists selected queries the model returned nothing for.
	MissingQueryIDs []uuid.UUID `json:"missing_query_ids"`
}

// RecommendationResult is the output of a convert-to-recommendations run
type RecommendationResult struct {
	Batch           GenerationBatch  `json:"batch"`
	Recommendations []Recommendation `json:"recommendations"`
}
