package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/aeo-insights/internal/types"
)

// FetchMetricSamples reads per-response metrics for a brand within the date
// range. An empty collector type reads every collector.
func (db *DB) FetchMetricSamples(ctx context.Context, q types.MetricsQuery) ([]types.MetricSample, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT r.query_id, gq.query_text, gq.topic, r.collector_type, r.processed_at,
		        r.visibility, r.share_of_answer, r.sentiment, r.competitor_metrics
		 FROM query_responses r
		 JOIN generated_queries gq ON gq.id = r.query_id
		 WHERE r.brand_id = $1
		   AND r.customer_id = $2
		   AND r.processed_at BETWEEN $3 AND $4
		   AND ($5::text = '' OR r.collector_type = $5::text)
		 ORDER BY r.processed_at, r.id`,
		q.BrandID, q.CustomerID, q.DateRange.Start, q.DateRange.End, q.CollectorType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var samples []types.MetricSample
	for rows.Next() {
		var s types.MetricSample
		var competitorJSON []byte
		if err := rows.Scan(&s.QueryID, &s.QueryText, &s.Topic, &s.CollectorType, &s.ProcessedAt,
			&s.Brand.Visibility, &s.Brand.ShareOfAnswer, &s.Brand.Sentiment, &competitorJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metric sample: %w", err)
		}
		s.Competitors, err = decodeCompetitorMetrics(competitorJSON)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metric samples: %w", err)
	}
	return samples, nil
}

// InsertMetricSample stores one response measurement. Used for seeding and tests.
func (db *DB) InsertMetricSample(ctx context.Context, q types.MetricsQuery, s types.MetricSample) error {
	competitorJSON, err := json.Marshal(s.Competitors)
	if err != nil {
		return fmt.Errorf("failed to marshal competitor metrics: %w", err)
	}
	if s.Competitors == nil {
		competitorJSON = []byte("{}")
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO query_responses (query_id, brand_id, customer_id, collector_type, processed_at,
		                              visibility, share_of_answer, sentiment, competitor_metrics)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.QueryID, q.BrandID, q.CustomerID, s.CollectorType, s.ProcessedAt,
		s.Brand.Visibility, s.Brand.ShareOfAnswer, s.Brand.Sentiment, competitorJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metric sample: %w", err)
	}
	return nil
}

func decodeCompetitorMetrics(raw []byte) (map[string]types.MetricValues, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]types.MetricValues
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode competitor metrics: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
