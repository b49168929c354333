package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/platform/httputil"
)

// Service defines the confirmation operation the handler fronts.
type Service interface {
	Confirm(ctx context.Context, token string) (id.UserID, error)
}

// Handler handles the verification-confirmation endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a verification Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/verifications/confirm", h.handleConfirm)
}

type confirmRequest struct {
	Token string `json:"token"`
}

type confirmResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token is required"))
		return
	}

	userID, err := h.service.Confirm(ctx, req.Token)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "verification confirm failed", "error", err.Error())
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, confirmResponse{
		Success: true,
		UserID:  userID.String(),
	})
}
