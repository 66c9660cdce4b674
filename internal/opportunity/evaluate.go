// Package opportunity applies the category threshold policy to aggregated
// query metrics and produces ranked, severity-scored opportunities.
package opportunity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/aeo-insights/internal/types"
)

// Evaluate returns the opportunities of one query.
//
// Values are rounded to one decimal before comparison, so the reported gap is
// always strictly above the relative threshold it triggered. A metric with no
// brand data is skipped. For category 1 the floor rule only fires for a metric
// when no competitor gap did.
func Evaluate(agg types.QueryAggregate, cls types.Classification, competitors []types.CompetitorAggregate) []types.Opportunity {
	policy, ok := Policies[cls.Category]
	if !ok {
		return nil
	}

	var opps []types.Opportunity
	for _, metric := range types.AllMetrics {
		raw := agg.Brand.Get(metric)
		if raw == nil {
			continue
		}
		brand := round1(*raw)

		relativeFound := false
		if threshold, ok := policy.Relative[metric]; ok {
			for _, name := range cls.CompetitorsInQuery {
				comp := findCompetitor(competitors, name)
				if comp == nil {
					continue
				}
				cv := comp.Values.Get(metric)
				if cv == nil {
					continue
				}
				target := round1(*cv)
				gap := round1(target - brand)
				if gap > threshold {
					opps = append(opps, newOpportunity(agg, cls.Category, metric, brand, target, gap, name))
					relativeFound = true
				}
			}
		}

		if floor, ok := policy.Floor[metric]; ok && !relativeFound && brand < floor {
			opps = append(opps, newOpportunity(agg, cls.Category, metric, brand, floor, round1(floor-brand), ""))
		}
	}
	return opps
}

// Rank removes duplicate ids, keeping the first, and sorts by priority
// descending with ties broken by id ascending.
func Rank(opps []types.Opportunity) []types.Opportunity {
	seen := make(map[string]bool, len(opps))
	out := make([]types.Opportunity, 0, len(opps))
	for _, o := range opps {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ID builds the per-run opportunity identifier.
func ID(queryID fmt.Stringer, metric types.Metric, competitor string) string {
	if competitor == "" {
		competitor = "none"
	}
	return fmt.Sprintf("%s-%s-%s", queryID, metric, competitor)
}

func newOpportunity(agg types.QueryAggregate, category types.Category, metric types.Metric, brand, target, gap float64, competitor string) types.Opportunity {
	o := types.Opportunity{
		ID:            ID(agg.QueryID, metric, competitor),
		QueryID:       agg.QueryID,
		QueryText:     agg.QueryText,
		Category:      category,
		Metric:        metric,
		BrandValue:    brand,
		TargetValue:   target,
		Gap:           gap,
		Severity:      SeverityFor(gap),
		PriorityScore: round2(gap * MetricWeights[metric]),
		TopSources:    []string{},
		Topic:         agg.Topic,
	}
	if competitor != "" {
		name := competitor
		o.Competitor = &name
	}
	return o
}

func findCompetitor(aggs []types.CompetitorAggregate, name string) *types.CompetitorAggregate {
	for i := range aggs {
		if strings.EqualFold(aggs[i].CompetitorName, name) {
			return &aggs[i]
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
