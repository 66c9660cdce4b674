// Package aggregation turns raw per-response answer-engine measurements into
// per-query brand and competitor averages over a date range.
package aggregation

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/types"
	"go.uber.org/zap"
)

// MetricsReader reads raw metric samples for one scope.
type MetricsReader interface {
	FetchMetricSamples(ctx context.Context, q types.MetricsQuery) ([]types.MetricSample, error)
}

// Params scopes an aggregation run.
type Params struct {
	BrandID    uuid.UUID
	CustomerID uuid.UUID
	DateRange  types.DateRange
	// Collectors restricts the read to these collector types; empty reads all.
	Collectors []string
	// Topic keeps only samples whose query topic matches, ignoring case; empty keeps all.
	Topic string
}

// Result holds per-query brand aggregates and, keyed by query id, the
// competitor aggregates of that query.
type Result struct {
	Queries     []types.QueryAggregate
	Competitors map[uuid.UUID][]types.CompetitorAggregate
	// FailedScopes lists collector scopes whose read failed and were skipped.
	FailedScopes []string
}

// CompetitorsFor returns the competitor aggregates of a query.
func (r *Result) CompetitorsFor(queryID uuid.UUID) []types.CompetitorAggregate {
	return r.Competitors[queryID]
}

// Aggregate reads samples once per collector scope and averages them per query.
//
// A scope whose read fails is logged and skipped, so the result may be partial.
// The only error returned is the context's, when the caller cancelled the run.
func Aggregate(ctx context.Context, reader MetricsReader, p Params) (*Result, error) {
	scopes := p.Collectors
	if len(scopes) == 0 {
		scopes = []string{""}
	}

	res := &Result{Competitors: make(map[uuid.UUID][]types.CompetitorAggregate)}
	var samples []types.MetricSample
	for _, scope := range scopes {
		batch, err := reader.FetchMetricSamples(ctx, types.MetricsQuery{
			BrandID:       p.BrandID,
			CustomerID:    p.CustomerID,
			DateRange:     p.DateRange,
			CollectorType: scope,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.Warn("metrics read failed, skipping scope",
				zap.String("brand_id", p.BrandID.String()),
				zap.String("customer_id", p.CustomerID.String()),
				zap.String("collector", scopeName(scope)),
				zap.Error(err))
			res.FailedScopes = append(res.FailedScopes, scopeName(scope))
			continue
		}
		samples = append(samples, batch...)
	}

	accs := make(map[uuid.UUID]*queryAccumulator)
	var order []uuid.UUID
	for _, s := range samples {
		if !topicMatches(s.Topic, p.Topic) {
			continue
		}
		brand := Normalize(s.Brand)
		if brand.IsEmpty() {
			continue
		}

		acc, ok := accs[s.QueryID]
		if !ok {
			acc = &queryAccumulator{
				queryID:     s.QueryID,
				queryText:   s.QueryText,
				topic:       s.Topic,
				competitors: make(map[string]*metricAccumulator),
			}
			accs[s.QueryID] = acc
			order = append(order, s.QueryID)
		}
		acc.responses++
		acc.brand.add(brand)
		for name, values := range s.Competitors {
			ca, ok := acc.competitors[name]
			if !ok {
				ca = &metricAccumulator{}
				acc.competitors[name] = ca
				acc.competitorOrder = append(acc.competitorOrder, name)
			}
			ca.add(Normalize(values))
		}
	}

	for _, id := range order {
		acc := accs[id]
		res.Queries = append(res.Queries, types.QueryAggregate{
			QueryID:       acc.queryID,
			QueryText:     acc.queryText,
			Topic:         acc.topic,
			Brand:         acc.brand.mean(),
			ResponseCount: acc.responses,
		})

		names := append([]string(nil), acc.competitorOrder...)
		sort.Strings(names)
		comps := make([]types.CompetitorAggregate, 0, len(names))
		for _, name := range names {
			comps = append(comps, types.CompetitorAggregate{
				QueryID:        acc.queryID,
				CompetitorName: name,
				Values:         acc.competitors[name].mean(),
			})
		}
		res.Competitors[acc.queryID] = comps
	}

	sort.SliceStable(res.Queries, func(i, j int) bool {
		if res.Queries[i].QueryText != res.Queries[j].QueryText {
			return res.Queries[i].QueryText < res.Queries[j].QueryText
		}
		return res.Queries[i].QueryID.String() < res.Queries[j].QueryID.String()
	})

	return res, nil
}

func scopeName(scope string) string {
	if scope == "" {
		return "all"
	}
	return scope
}

func topicMatches(topic *string, filter string) bool {
	if filter == "" {
		return true
	}
	return topic != nil && strings.EqualFold(strings.TrimSpace(*topic), strings.TrimSpace(filter))
}

type queryAccumulator struct {
	queryID         uuid.UUID
	queryText       string
	topic           *string
	responses       int
	brand           metricAccumulator
	competitors     map[string]*metricAccumulator
	competitorOrder []string
}

type runningMean struct {
	sum   float64
	count int
}

func (m *runningMean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.count++
}

func (m *runningMean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	v := m.sum / float64(m.count)
	return &v
}

type metricAccumulator struct {
	visibility runningMean
	soa        runningMean
	sentiment  runningMean
}

func (a *metricAccumulator) add(v types.MetricValues) {
	a.visibility.add(v.Visibility)
	a.soa.add(v.ShareOfAnswer)
	a.sentiment.add(v.Sentiment)
}

func (a *metricAccumulator) mean() types.MetricValues {
	return types.MetricValues{
		Visibility:    a.visibility.value(),
		ShareOfAnswer: a.soa.value(),
		Sentiment:     a.sentiment.value(),
	}
}
