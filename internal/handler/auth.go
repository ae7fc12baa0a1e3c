package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/versz/versz/internal/handler/dto"
	"github.com/versz/versz/internal/middleware"
	"github.com/versz/versz/internal/service"
)

// AuthHandler handles registration and token issuance.
type AuthHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err, "register")
		return
	}

	h.logger.Info("user_registered",
		"username", user.Username,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: "User registered successfully"})
}

// Token handles POST /token.
// Accepts an OAuth2-style password form: username + password fields.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.svc.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("login_failed",
				"request_id", middleware.GetRequestID(r.Context()),
			)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password")
			return
		}
		h.logger.Error("login error", "error", err.Error())
		writeInternalError(w)
		return
	}

	token, err := h.svc.IssueToken(user)
	if err != nil {
		h.logger.Error("token issue error", "error", err.Error())
		writeInternalError(w)
		return
	}

	h.logger.Info("user_logged_in",
		"username", user.Username,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleServiceError maps user service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already registered")
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "INVALID_USERNAME", "Username must be 1-30 characters: letters, digits, underscore, hyphen")
	default:
		h.logger.Error(operation+" error",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeInternalError(w)
	}
}
