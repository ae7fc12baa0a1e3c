package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/versz/versz/internal/model"
)

// ErrLyricsNotFound is returned when a lyrics document does not exist or
// belongs to another user. The two cases are deliberately indistinguishable
// so document IDs of other users cannot be enumerated.
var ErrLyricsNotFound = errors.New("lyrics not found")

// CreateLyrics inserts a new lyrics document.
func (r *Repository) CreateLyrics(ctx context.Context, doc *model.LyricsDocument) error {
	query := `
		INSERT INTO lyrics (id, username, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.Username,
		doc.Content,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create lyrics: %w", err)
	}

	return nil
}

// ListLyricsByOwner retrieves all lyrics documents owned by a user.
// No pagination; insertion order is typical but not guaranteed.
func (r *Repository) ListLyricsByOwner(ctx context.Context, username string) ([]*model.LyricsDocument, error) {
	query := `
		SELECT id, username, content, created_at, updated_at
		FROM lyrics
		WHERE username = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list lyrics: %w", err)
	}
	defer rows.Close()

	var docs []*model.LyricsDocument
	for rows.Next() {
		var doc model.LyricsDocument
		if err := rows.Scan(
			&doc.ID,
			&doc.Username,
			&doc.Content,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lyrics: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lyrics: %w", err)
	}

	return docs, nil
}

// UpdateLyrics replaces the content of a lyrics document in a single
// conditional statement scoped on both id and owner. Zero matched rows
// map to ErrLyricsNotFound whether the document is missing or owned by
// someone else. The created_at timestamp is untouched; updated_at comes
// from the same clock CreateLyrics stamps with.
func (r *Repository) UpdateLyrics(ctx context.Context, id, username string, content model.LyricsContent) error {
	query := `
		UPDATE lyrics
		SET content = $3, updated_at = $4
		WHERE id = $1 AND username = $2
	`

	result, err := r.pool.Exec(ctx, query, id, username, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update lyrics: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLyricsNotFound
	}

	return nil
}
