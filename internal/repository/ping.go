package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ReadSentinel performs the lightweight read used by the health endpoint
// and the keep-alive probe: a lookup of the fixed ping row. A missing row
// is tolerated; only a transport-level failure counts as unhealthy.
func (r *Repository) ReadSentinel(ctx context.Context) error {
	query := `SELECT id FROM ping WHERE id = 'ping'`

	var id string
	err := r.pool.QueryRow(ctx, query).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to read sentinel: %w", err)
	}

	return nil
}
