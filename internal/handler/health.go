package handler

import (
	"context"
	"net/http"
	"time"
)

// SentinelReader performs the lightweight persistence read used for
// health reporting.
type SentinelReader interface {
	ReadSentinel(ctx context.Context) error
}

// HealthHandler manages the health check endpoint.
type HealthHandler struct {
	db SentinelReader
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db SentinelReader) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports whether the persistence backend is reachable.
// Returns 503 when the sentinel read fails.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.ReadSentinel(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}
