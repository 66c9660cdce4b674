package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/types"
)

// FetchCitations reads citations for a set of queries in one round trip,
// ordered by usage count descending.
func (db *DB) FetchCitations(ctx context.Context, queryIDs []uuid.UUID) ([]types.Citation, error) {
	if len(queryIDs) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT query_id, domain, COALESCE(url, ''), usage_count
		 FROM citations
		 WHERE query_id = ANY($1::uuid[])
		 ORDER BY usage_count DESC, domain, url`,
		uuidStrings(queryIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query citations: %w", err)
	}
	defer rows.Close()

	var citations []types.Citation
	for rows.Next() {
		var c types.Citation
		if err := rows.Scan(&c.QueryID, &c.Domain, &c.URL, &c.UsageCount); err != nil {
			return nil, fmt.Errorf("failed to scan citation: %w", err)
		}
		citations = append(citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate citations: %w", err)
	}
	return citations, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
