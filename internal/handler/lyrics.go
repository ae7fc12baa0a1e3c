package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/versz/versz/internal/auth"
	"github.com/versz/versz/internal/handler/dto"
	"github.com/versz/versz/internal/middleware"
	"github.com/versz/versz/internal/model"
	"github.com/versz/versz/internal/service"
)

// LyricsHandler handles HTTP requests for lyrics operations.
type LyricsHandler struct {
	svc    *service.LyricsService
	logger *slog.Logger
}

// NewLyricsHandler creates a new LyricsHandler.
func NewLyricsHandler(svc *service.LyricsService, logger *slog.Logger) *LyricsHandler {
	return &LyricsHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /lyrics.
func (h *LyricsHandler) List(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	docs, err := h.svc.ListByOwner(r.Context(), username)
	if err != nil {
		h.handleServiceError(w, r, err, username)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLyricsListResponse(docs))
}

// Create handles POST /lyrics.
func (h *LyricsHandler) Create(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	var content model.LyricsContent
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	doc, err := h.svc.Create(r.Context(), username, content)
	if err != nil {
		h.handleServiceError(w, r, err, username)
		return
	}

	h.logger.Info("lyrics_created",
		"lyrics_id", doc.ID,
		"username", username,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.CreateLyricsResponse{ID: doc.ID})
}

// Update handles PUT /lyrics/{id}.
// Full content replacement; a document that is missing or owned by another
// user yields the same 404.
func (h *LyricsHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Lyrics ID is required")
		return
	}

	var content model.LyricsContent
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.Update(r.Context(), id, username, content); err != nil {
		h.handleServiceError(w, r, err, username)
		return
	}

	h.logger.Info("lyrics_updated",
		"lyrics_id", id,
		"username", username,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Lyrics updated successfully"})
}

// handleServiceError maps lyrics service errors to HTTP responses.
func (h *LyricsHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, username string) {
	switch {
	case errors.Is(err, service.ErrLyricsNotFound):
		writeError(w, http.StatusNotFound, "LYRICS_NOT_FOUND", "Lyrics not found or unauthorized")
	default:
		h.logger.Error("lyrics error",
			"error", err.Error(),
			"username", username,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeInternalError(w)
	}
}
