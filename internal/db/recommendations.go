package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/aeo-insights/internal/types"
)

// SaveRecommendationBatch writes the batch row and all of its recommendations
// in one transaction. Either everything is stored or nothing is.
func (db *DB) SaveRecommendationBatch(ctx context.Context, batch types.GenerationBatch, recs []types.Recommendation) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO recommendation_batches (id, brand_id, customer_id, recommendation_count,
		     selected_query_count, missing_query_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7)`,
		batch.ID, batch.BrandID, batch.CustomerID, len(recs),
		batch.SelectedQueryCount, uuidStrings(batch.MissingQueryIDs), batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation batch: %w", err)
	}

	for i, r := range recs {
		competitors := r.TargetCompetitors
		if competitors == nil {
			competitors = []string{}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO recommendations (id, batch_id, query_id, query_text, action, channel, content_type,
			     rationale, content_title, timeline, effort, expected_boost, confidence, amplification_advice,
			     target_competitors, focus_area, kpi, priority_score, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
			r.ID, batch.ID, r.QueryID, r.QueryText, r.Action, r.Channel, r.ContentType,
			r.Rationale, nullIfEmpty(r.ContentTitle), nullIfEmpty(r.Timeline), string(r.Effort),
			nullIfEmpty(r.ExpectedBoost), r.Confidence, nullIfEmpty(r.AmplificationAdvice),
			competitors, r.FocusArea, r.KPI, r.PriorityScore, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation for query %s: %w", r.QueryID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRecommendationBatch loads a stored batch and its recommendations in
// generation order. Returns nil, nil when the batch does not exist.
func (db *DB) GetRecommendationBatch(ctx context.Context, batchID uuid.UUID) (*types.RecommendationResult, error) {
	var res types.RecommendationResult
	var missing []string
	err := db.pool.QueryRow(ctx,
		`SELECT id, brand_id, customer_id, recommendation_count, selected_query_count,
		        missing_query_ids::text[], created_at
		 FROM recommendation_batches WHERE id = $1`,
		batchID,
	).Scan(&res.Batch.ID, &res.Batch.BrandID, &res.Batch.CustomerID, &res.Batch.RecommendationCount,
		&res.Batch.SelectedQueryCount, &missing, &res.Batch.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recommendation batch: %w", err)
	}
	res.Batch.MissingQueryIDs, err = parseUUIDs(missing)
	if err != nil {
		return nil, fmt.Errorf("failed to decode missing query ids: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, query_id, query_text, action, channel, content_type, rationale,
		        COALESCE(content_title, ''), COALESCE(timeline, ''), effort, COALESCE(expected_boost, ''),
		        confidence, COALESCE(amplification_advice, ''), target_competitors, focus_area, kpi, priority_score
		 FROM recommendations WHERE batch_id = $1
		 ORDER BY position`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	res.Recommendations = []types.Recommendation{}
	for rows.Next() {
		r := types.Recommendation{BatchID: batchID}
		var effort string
		if err := rows.Scan(&r.ID, &r.QueryID, &r.QueryText, &r.Action, &r.Channel, &r.ContentType, &r.Rationale,
			&r.ContentTitle, &r.Timeline, &effort, &r.ExpectedBoost,
			&r.Confidence, &r.AmplificationAdvice, &r.TargetCompetitors, &r.FocusArea, &r.KPI, &r.PriorityScore); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		r.Effort = types.Effort(effort)
		res.Recommendations = append(res.Recommendations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return &res, nil
}
