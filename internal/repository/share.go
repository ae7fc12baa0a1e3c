package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/versz/versz/internal/model"
)

// Common errors for share repository operations.
var (
	ErrShareNotFound   = errors.New("share not found")
	ErrExtensionExists = errors.New("extension already exists")
)

// CreateShare inserts a new share snapshot.
// Returns ErrExtensionExists if the extension is already taken by any owner.
func (r *Repository) CreateShare(ctx context.Context, share *model.Share) error {
	query := `
		INSERT INTO shares (extension, username, content, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		share.Extension,
		share.Username,
		share.Content,
		share.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrExtensionExists
		}
		return fmt.Errorf("failed to create share: %w", err)
	}

	return nil
}

// GetShareByExtension retrieves a share snapshot by its extension.
// This is the hot path for public lyrics views.
func (r *Repository) GetShareByExtension(ctx context.Context, extension string) (*model.Share, error) {
	query := `
		SELECT extension, username, content, created_at
		FROM shares
		WHERE extension = $1
	`

	var share model.Share
	err := r.pool.QueryRow(ctx, query, extension).Scan(
		&share.Extension,
		&share.Username,
		&share.Content,
		&share.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share by extension: %w", err)
	}

	return &share, nil
}
