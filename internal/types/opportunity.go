package types

import "github.com/google/uuid"

// Category is the query classification bucket
type Category int

// Category constants
const (
	// CategoryBrandAndCompetitor means the query names the brand and at least one competitor
	CategoryBrandAndCompetitor Category = 1
	// CategoryBrandOnly means the query names only the brand
	CategoryBrandOnly Category = 2
	// CategoryUnbiased means the query names no brand
	CategoryUnbiased Category = 3
)

// Severity buckets an opportunity gap
type Severity string

// Severity constants
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Classification is the result of classifying a query
type Classification struct {
	Category           Category `json:"category"`
	CompetitorsInQuery []string `json:"competitors_in_query"`
}

// Opportunity is a thresholded performance gap on one metric for one query
type Opportunity struct {
	ID            string    `json:"id"`
	QueryID       uuid.UUID `json:"query_id"`
	QueryText     string    `json:"query_text"`
	Category      Category  `json:"category"`
	Metric        Metric    `json:"metric"`
	BrandValue    float64   `json:"brand_value"`
	TargetValue   float64   `json:"target_value"`
	Gap           float64   `json:"gap"`
	Severity      Severity  `json:"severity"`
	PriorityScore float64   `json:"priority_score"`
	Competitor    *string   `json:"competitor,omitempty"`
	TopSources    []string  `json:"top_sources"`
	Topic         *string   `json:"topic,omitempty"`
}

// OpportunitySummary counts opportunities along each reporting axis
type OpportunitySummary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByCategory map[Category]int `json:"by_category"`
	ByMetric   map[Metric]int   `json:"by_metric"`
}

// OpportunityReport is the output of an identify-opportunities run
type OpportunityReport struct {
	BrandID              uuid.UUID          `json:"brand_id"`
	CustomerID           uuid.UUID          `json:"customer_id"`
	DateRange            DateRange          `json:"date_range"`
	TotalQueriesAnalyzed int                `json:"total_queries_analyzed"`
	Opportunities        []Opportunity      `json:"opportunities"`
	Summary              OpportunitySummary `json:"summary"`
}

// Summarize counts opportunities by severity, category and metric
func Summarize(opps []Opportunity) OpportunitySummary {
	s := OpportunitySummary{
		Total:      len(opps),
		BySeverity: make(map[Severity]int),
		ByCategory: make(map[Category]int),
		ByMetric:   make(map[Metric]int),
	}
	for _, o := range opps {
		s.BySeverity[o.Severity]++
		s.ByCategory[o.Category]++
		s.ByMetric[o.Metric]++
	}
	return s
}
