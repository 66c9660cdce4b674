package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/aeo-insights/internal/types"
)

// GetBrandContext loads a brand owned by the customer together with its
// competitors. Returns nil, nil when the brand does not exist for the customer.
func (db *DB) GetBrandContext(ctx context.Context, brandID, customerID uuid.UUID) (*types.BrandContext, error) {
	var bc types.BrandContext
	var homepage *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, customer_id, name, aliases, homepage_domain
		 FROM brands WHERE id = $1 AND customer_id = $2`,
		brandID, customerID,
	).Scan(&bc.Brand.ID, &bc.Brand.CustomerID, &bc.Brand.Name, &bc.Brand.Aliases, &homepage)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	if homepage != nil {
		bc.Brand.HomepageDomain = *homepage
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, name, COALESCE(domain, '')
		 FROM competitors WHERE brand_id = $1
		 ORDER BY name`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	defer rows.Close()

	bc.Competitors = []types.Competitor{}
	for rows.Next() {
		var c types.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		bc.Competitors = append(bc.Competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate competitors: %w", err)
	}

	return &bc, nil
}

// CreateBrand inserts a brand and its competitors. Used for seeding and tests.
func (db *DB) CreateBrand(ctx context.Context, bc *types.BrandContext) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if bc.Brand.ID == uuid.Nil {
		bc.Brand.ID = uuid.New()
	}
	aliases := bc.Brand.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO brands (id, customer_id, name, aliases, homepage_domain)
		 VALUES ($1, $2, $3, $4, $5)`,
		bc.Brand.ID, bc.Brand.CustomerID, bc.Brand.Name, aliases, nullIfEmpty(bc.Brand.HomepageDomain),
	)
	if err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}

	for i := range bc.Competitors {
		c := &bc.Competitors[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO competitors (id, brand_id, name, domain) VALUES ($1, $2, $3, $4)`,
			c.ID, bc.Brand.ID, c.Name, nullIfEmpty(c.Domain),
		)
		if err != nil {
			return fmt.Errorf("failed to insert competitor %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
