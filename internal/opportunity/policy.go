package opportunity

import "github.com/jonathan/aeo-insights/internal/types"

// Policy is the fixed threshold rule set of one category.
// A nil map means the rule kind does not apply to the category.
type Policy struct {
	// Relative triggers when competitor - brand exceeds the threshold.
	Relative map[types.Metric]float64
	// Floor triggers when the brand value is below the floor.
	Floor map[types.Metric]float64
}

// Policies are fixed thresholds, not runtime configuration.
var Policies = map[types.Category]Policy{
	types.CategoryBrandAndCompetitor: {
		Relative: map[types.Metric]float64{
			types.MetricVisibility: 3,
			types.MetricSoA:        3,
			types.MetricSentiment:  3,
		},
		Floor: map[types.Metric]float64{
			types.MetricVisibility: 30,
			types.MetricSoA:        40,
			types.MetricSentiment:  70,
		},
	},
	types.CategoryBrandOnly: {
		Floor: map[types.Metric]float64{
			types.MetricVisibility: 30,
			types.MetricSoA:        50,
			types.MetricSentiment:  60,
		},
	},
	types.CategoryUnbiased: {
		Relative: map[types.Metric]float64{
			types.MetricVisibility: 3,
			types.MetricSoA:        5,
			types.MetricSentiment:  5,
		},
	},
}

// MetricWeights scale a gap into a priority score.
var MetricWeights = map[types.Metric]float64{
	types.MetricVisibility: 1.2,
	types.MetricSoA:        1.0,
	types.MetricSentiment:  0.8,
}

// SeverityFor buckets a gap: >20 Critical, >10 High, >5 Medium, otherwise Low.
func SeverityFor(gap float64) types.Severity {
	switch {
	case gap > 20:
		return types.SeverityCritical
	case gap > 10:
		return types.SeverityHigh
	case gap > 5:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}
