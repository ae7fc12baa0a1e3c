package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/versz/versz/internal/model"
	"github.com/versz/versz/internal/repository"
)

// ErrLyricsNotFound is returned when a document does not exist or is owned
// by another user; callers cannot tell which.
var ErrLyricsNotFound = errors.New("lyrics not found")

// LyricsService handles owner-scoped lyrics CRUD.
type LyricsService struct {
	repo *repository.Repository
}

// NewLyricsService creates a new LyricsService.
func NewLyricsService(repo *repository.Repository) *LyricsService {
	return &LyricsService{repo: repo}
}

// Create stores a new lyrics document for the owner and returns it with a
// fresh identifier and timestamps.
func (s *LyricsService) Create(ctx context.Context, username string, content model.LyricsContent) (*model.LyricsDocument, error) {
	now := time.Now().UTC()
	doc := &model.LyricsDocument{
		ID:        ulid.Make().String(),
		Username:  username,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateLyrics(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByOwner returns every document owned by the user.
func (s *LyricsService) ListByOwner(ctx context.Context, username string) ([]*model.LyricsDocument, error) {
	docs, err := s.repo.ListLyricsByOwner(ctx, username)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*model.LyricsDocument{}
	}
	return docs, nil
}

// Update fully replaces the content of the owner's document. A missing
// document and a document owned by someone else both yield
// ErrLyricsNotFound.
func (s *LyricsService) Update(ctx context.Context, id, username string, content model.LyricsContent) error {
	err := s.repo.UpdateLyrics(ctx, id, username, content)
	if err != nil {
		if errors.Is(err, repository.ErrLyricsNotFound) {
			return ErrLyricsNotFound
		}
		return err
	}
	return nil
}
