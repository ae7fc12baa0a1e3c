// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/versz/versz/internal/auth"
	"github.com/versz/versz/internal/model"
	"github.com/versz/versz/internal/repository"
)

// User service errors.
var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidUsername    = errors.New("invalid username format")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// Username validation regex: 1-30 chars, alphanumeric + underscore + hyphen.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,30}$`)

// UserService handles registration and authentication.
type UserService struct {
	repo   *repository.Repository
	tokens *auth.TokenService

	// dummyHash is verified against when the username does not exist, so
	// unknown-user and wrong-password failures cost the same hash work.
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, tokens *auth.TokenService) (*UserService, error) {
	dummyHash, err := auth.HashPassword("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &UserService{
		repo:      repo,
		tokens:    tokens,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new account. The plaintext password is hashed before
// it reaches the repository and is never stored or logged.
func (s *UserService) Register(ctx context.Context, username, name, password string) (*model.User, error) {
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords produce the same error and comparable timing.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn one verification so the miss is not observably faster.
			_, _ = auth.VerifyPassword(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs an access token for the given user.
func (s *UserService) IssueToken(user *model.User) (string, error) {
	return s.tokens.Issue(user.Username)
}
