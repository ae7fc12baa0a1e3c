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
	"github.com/versz/versz/internal/service"
)

// ShareHandler handles HTTP requests for share operations.
type ShareHandler struct {
	svc    *service.ShareService
	logger *slog.Logger
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(svc *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /share.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	var req dto.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	share, err := h.svc.Create(r.Context(), username, req.Extension, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err, username)
		return
	}

	h.logger.Info("lyrics_shared",
		"extension", share.Extension,
		"username", username,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.ShareResponse{URL: h.svc.ShareURL(share.Extension)})
}

// Get handles GET /share/{extension}.
// Unauthenticated; returns the snapshot content only, never the owner.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	extension := chi.URLParam(r, "extension")
	if extension == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EXTENSION", "Extension is required")
		return
	}

	share, err := h.svc.GetByExtension(r.Context(), extension)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, share.Content)
}

// handleServiceError maps share service errors to HTTP responses.
func (h *ShareHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, username string) {
	switch {
	case errors.Is(err, service.ErrExtensionTaken):
		writeError(w, http.StatusBadRequest, "EXTENSION_TAKEN", "Extension already in use")
	case errors.Is(err, service.ErrInvalidExtension):
		writeError(w, http.StatusBadRequest, "INVALID_EXTENSION", "Extension must be 1-50 characters: letters, digits, hyphen")
	case errors.Is(err, service.ErrShareNotFound):
		writeError(w, http.StatusNotFound, "SHARE_NOT_FOUND", "Shared lyrics not found")
	default:
		attrs := []any{
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		}
		if username != "" {
			attrs = append(attrs, "username", username)
		}
		h.logger.Error("share error", attrs...)
		writeInternalError(w)
	}
}
