// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/versz/versz/internal/model"
)

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// MessageResponse is a generic confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse represents an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateLyricsResponse carries the identifier of a newly created document.
type CreateLyricsResponse struct {
	ID string `json:"id"`
}

// LyricsDocumentResponse represents a lyrics document in API responses.
type LyricsDocumentResponse struct {
	ID        string              `json:"id"`
	Content   model.LyricsContent `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ShareRequest represents the request body for publishing a share.
type ShareRequest struct {
	Extension string              `json:"extension"`
	Content   model.LyricsContent `json:"content"`
}

// ShareResponse carries the public URL of a created share.
type ShareResponse struct {
	URL string `json:"url"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToLyricsDocumentResponse converts a LyricsDocument to its response DTO.
// The owning username is implied by the authenticated caller and omitted.
func ToLyricsDocumentResponse(doc *model.LyricsDocument) LyricsDocumentResponse {
	return LyricsDocumentResponse{
		ID:        doc.ID,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// ToLyricsListResponse converts a list of documents to response DTOs.
func ToLyricsListResponse(docs []*model.LyricsDocument) []LyricsDocumentResponse {
	out := make([]LyricsDocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToLyricsDocumentResponse(doc))
	}
	return out
}
