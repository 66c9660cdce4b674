package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/types"
)

// CreateQuery inserts a generated query for a brand. Used for seeding and tests.
func (db *DB) CreateQuery(ctx context.Context, brandID, customerID uuid.UUID, q *types.GeneratedQuery) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generated_queries (id, brand_id, customer_id, query_text, topic)
		 VALUES ($1, $2, $3, $4, $5)`,
		q.ID, brandID, customerID, q.Text, q.Topic,
	)
	if err != nil {
		return fmt.Errorf("failed to insert query: %w", err)
	}
	return nil
}

// AddCitation records a cited source for a query. Used for seeding and tests.
func (db *DB) AddCitation(ctx context.Context, c types.Citation) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO citations (query_id, domain, url, usage_count) VALUES ($1, $2, $3, $4)`,
		c.QueryID, c.Domain, nullIfEmpty(c.URL), c.UsageCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert citation: %w", err)
	}
	return nil
}
