package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/versz/versz/internal/cache"
	"github.com/versz/versz/internal/model"
	"github.com/versz/versz/internal/repository"
)

// Share service errors.
var (
	ErrExtensionTaken   = errors.New("extension already in use")
	ErrInvalidExtension = errors.New("invalid extension format")
	ErrShareNotFound    = errors.New("share not found")
)

// Extension validation regex: 1-50 chars, alphanumeric + hyphen.
var extensionRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{1,50}$`)

// ShareService handles public share snapshots.
type ShareService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	baseURL string
}

// NewShareService creates a new ShareService.
func NewShareService(repo *repository.Repository, cache *cache.Cache, baseURL string) *ShareService {
	return &ShareService{
		repo:    repo,
		cache:   cache,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the configured public base URL.
func (s *ShareService) BaseURL() string {
	return s.baseURL
}

// ShareURL builds the public address for an extension.
func (s *ShareService) ShareURL(extension string) string {
	return s.baseURL + "/" + extension
}

// Create publishes an immutable snapshot of the given content under the
// extension. The snapshot is a copy; subsequent edits to the source
// document do not affect it. The unique index on the extension column is
// the only conflict check.
func (s *ShareService) Create(ctx context.Context, username, extension string, content model.LyricsContent) (*model.Share, error) {
	if !extensionRegex.MatchString(extension) {
		return nil, ErrInvalidExtension
	}

	share := &model.Share{
		Extension: extension,
		Username:  username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateShare(ctx, share); err != nil {
		if errors.Is(err, repository.ErrExtensionExists) {
			return nil, ErrExtensionTaken
		}
		return nil, err
	}

	// Warm the cache; failures here never fail the request.
	_ = s.cache.SetShare(ctx, share)

	return share, nil
}

// GetByExtension returns the published snapshot for an extension.
// Public, unauthenticated read; the hot path goes through Redis first.
func (s *ShareService) GetByExtension(ctx context.Context, extension string) (*model.Share, error) {
	if !extensionRegex.MatchString(extension) {
		return nil, ErrShareNotFound
	}

	if negative, err := s.cache.IsNegativelyCached(ctx, extension); err == nil && negative {
		return nil, ErrShareNotFound
	}

	if share, err := s.cache.GetShare(ctx, extension); err == nil {
		return share, nil
	}

	share, err := s.repo.GetShareByExtension(ctx, extension)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			_ = s.cache.SetNegativeCache(ctx, extension)
			return nil, ErrShareNotFound
		}
		return nil, err
	}

	_ = s.cache.SetShare(ctx, share)

	return share, nil
}
