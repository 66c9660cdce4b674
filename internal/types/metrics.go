package types

import (
	"time"

	"github.com/google/uuid"
)

// Metric identifies one of the three tracked answer-engine metrics
type Metric string

// Metric constants
const (
	MetricVisibility Metric = "visibility"
	MetricSoA        Metric = "soa"
	MetricSentiment  Metric = "sentiment"
)

// AllMetrics lists metrics in evaluation order
var AllMetrics = []Metric{MetricVisibility, MetricSoA, MetricSentiment}

// MetricValues holds nullable values for the three metrics.
// A nil field means "no data", which is distinct from zero.
type MetricValues struct {
	Visibility    *float64 `json:"visibility,omitempty"`
	ShareOfAnswer *float64 `json:"share_of_answer,omitempty"`
	Sentiment     *float64 `json:"sentiment,omitempty"`
}

// Get returns the value for a metric
func (v MetricValues) Get(m Metric) *float64 {
	switch m {
	case MetricVisibility:
		return v.Visibility
	case MetricSoA:
		return v.ShareOfAnswer
	case MetricSentiment:
		return v.Sentiment
	default:
		return nil
	}
}

// IsEmpty reports whether no metric has a value
func (v MetricValues) IsEmpty() bool {
	return v.Visibility == nil && v.ShareOfAnswer == nil && v.Sentiment == nil
}

// MetricSample is one answer-engine response measurement for a query
type MetricSample struct {
	QueryID       uuid.UUID               `json:"query_id"`
	QueryText     string                  `json:"query_text"`
	Topic         *string                 `json:"topic,omitempty"`
	CollectorType string                  `json:"collector_type"`
	ProcessedAt   time.Time               `json:"processed_at"`
	Brand         MetricValues            `json:"brand"`
	Competitors   map[string]MetricValues `json:"competitors,omitempty"`
}

// QueryAggregate holds per-query brand averages over a run's window
type QueryAggregate struct {
	QueryID       uuid.UUID    `json:"query_id"`
	QueryText     string       `json:"query_text"`
	Topic         *string      `json:"topic,omitempty"`
	Brand         MetricValues `json:"brand"`
	ResponseCount int          `json:"response_count"`
}

// CompetitorAggregate holds per-query averages for one competitor
type CompetitorAggregate struct {
	QueryID        uuid.UUID    `json:"query_id"`
	CompetitorName string       `json:"competitor_name"`
	Values         MetricValues `json:"values"`
}

// DateRange is an inclusive time window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LookbackRange returns the window ending at now and spanning days
func LookbackRange(now time.Time, days int) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, -days),
		End:   now,
	}
}

// Citation is a source cited by answer engines for a query
type Citation struct {
	QueryID    uuid.UUID `json:"query_id"`
	Domain     string    `json:"domain"`
	URL        string    `json:"url"`
	UsageCount int       `json:"usage_count"`
}

// MetricsQuery scopes one read of raw metric samples.
// An empty CollectorType reads every collector.
type MetricsQuery struct {
	BrandID       uuid.UUID `json:"brand_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	DateRange     DateRange `json:"date_range"`
	CollectorType string    `json:"collector_type,omitempty"`
}
