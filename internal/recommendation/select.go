// Package recommendation turns ranked opportunities into one drafted content
// recommendation per selected query.
package recommendation

import (
	"sort"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/types"
)

// DefaultTopQueries is the number of distinct queries drafted per run
const DefaultTopQueries = 10

// QueryGroup holds every opportunity of one selected query, highest priority first
type QueryGroup struct {
	QueryID       uuid.UUID
	QueryText     string
	Opportunities []types.Opportunity
}

// Top returns the highest priority opportunity of the group
func (g QueryGroup) Top() types.Opportunity {
	return g.Opportunities[0]
}

// Competitors returns the sorted union of competitor names across the group
func (g QueryGroup) Competitors() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, o := range g.Opportunities {
		if o.Competitor == nil || *o.Competitor == "" || seen[*o.Competitor] {
			continue
		}
		seen[*o.Competitor] = true
		out = append(out, *o.Competitor)
	}
	sort.Strings(out)
	return out
}

// SelectTopQueries groups ranked opportunities by query and keeps the first n
// distinct queries. Every opportunity of a kept query is retained.
func SelectTopQueries(ranked []types.Opportunity, n int) []QueryGroup {
	if n <= 0 {
		n = DefaultTopQueries
	}

	index := make(map[uuid.UUID]int)
	var groups []QueryGroup
	for _, o := range ranked {
		if i, ok := index[o.QueryID]; ok {
			groups[i].Opportunities = append(groups[i].Opportunities, o)
			continue
		}
		if len(groups) == n {
			continue
		}
		index[o.QueryID] = len(groups)
		groups = append(groups, QueryGroup{
			QueryID:       o.QueryID,
			QueryText:     o.QueryText,
			Opportunities: []types.Opportunity{o},
		})
	}
	return groups
}

// focus maps a metric to the recommendation's focus area and KPI
var focus = map[types.Metric]struct{ area, kpi string }{
	types.MetricVisibility: {"Visibility", "Brand mention rate in AI answers"},
	types.MetricSoA:        {"Share of Answer", "Share of answer against competitors"},
	types.MetricSentiment:  {"Sentiment", "Average sentiment of brand mentions"},
}

// FocusFor returns the focus area and KPI for a metric
func FocusFor(m types.Metric) (area, kpi string) {
	f, ok := focus[m]
	if !ok {
		return string(m), string(m)
	}
	return f.area, f.kpi
}
