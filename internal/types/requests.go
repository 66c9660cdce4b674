package types

import (
	"github.com/go-playground/validator/v10"
)

// IdentifyOpportunitiesRequest is the input of the identify-opportunities operation.
type IdentifyOpportunitiesRequest struct {
	BrandID      string   `json:"brand_id" validate:"required,uuid"`
	CustomerID   string   `json:"customer_id" validate:"required,uuid"`
	LookbackDays int      `json:"lookback_days,omitempty" validate:"omitempty,min=1,max=365"`
	Collectors   []string `json:"collectors,omitempty" validate:"omitempty,dive,required"`
	Topic        string   `json:"topic,omitempty"`
}

// ConvertRecommendationsRequest is the input of the convert-to-recommendations operation.
type ConvertRecommendationsRequest struct {
	BrandID    string `json:"brand_id" validate:"required,uuid"`
	CustomerID string `json:"customer_id" validate:"required,uuid"`
}

// ScoreContentRequest is the input of the score-content operation.
// An empty or unknown content type is scored with the article rubric.
type ScoreContentRequest struct {
	ContentType string `json:"content_type,omitempty"`
	RawText     string `json:"raw_text" validate:"required"`
}

// Validate validates the IdentifyOpportunitiesRequest using the validator.
func (r *IdentifyOpportunitiesRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ConvertRecommendationsRequest using the validator.
func (r *ConvertRecommendationsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ScoreContentRequest using the validator.
func (r *ScoreContentRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
