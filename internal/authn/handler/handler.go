package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sisvita/internal/authn"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/platform/httputil"
)

// Service defines the login operation the handler fronts.
type Service interface {
	Login(ctx context.Context, email, password string) (*authn.Result, error)
}

// Handler handles the login endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a login Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the login routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/login", h.handleLogin)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken   string `json:"access_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int64  `json:"expires_in"`
	UserID        string `json:"user_id"`
	EmailVerified bool   `json:"email_verified"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "login failed", "error", err.Error())
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:   result.AccessToken,
		TokenType:     "Bearer",
		ExpiresIn:     int64(result.ExpiresIn.Seconds()),
		UserID:        result.UserID.String(),
		EmailVerified: result.EmailVerified,
	})
}
