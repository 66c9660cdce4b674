package aggregation

import "github.com/jonathan/aeo-insights/internal/types"

// Normalize converts raw sample values to percentages in [0,100].
//
// Visibility is stored either as a ratio or as a percent: values above 1 are
// already percent, anything else is scaled by 100. Share of answer and
// sentiment are always percent. Nil stays nil.
func Normalize(v types.MetricValues) types.MetricValues {
	return types.MetricValues{
		Visibility:    normalizeVisibility(v.Visibility),
		ShareOfAnswer: clampPercent(v.ShareOfAnswer),
		Sentiment:     clampPercent(v.Sentiment),
	}
}

func normalizeVisibility(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	if x <= 1 {
		x *= 100
	}
	return clampPercent(&x)
}

func clampPercent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	if x < 0 {
		x = 0
	}
	if x > 100 {
		x = 100
	}
	return &x
}
