package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-catalog/internal/observability"
	"github.com/odyssey-erp/odyssey-catalog/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		metrics:   metrics,
		validator: validator.New(),
	}
}

type credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  users.Public `json:"user"`
}

// Authenticate exchanges credentials for a token.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var form credentials
	if err := httpx.DecodeJSON(r, &form); err != nil {
		h.metrics.ObserveAuth("malformed")
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		h.metrics.ObserveAuth("malformed")
		httpx.RespondError(w, shared.ValidationError(err))
		return
	}

	token, identity, err := h.service.Login(r.Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		h.metrics.ObserveAuth("rejected")
		h.logger.Info("authentication rejected", slog.String("remote", r.RemoteAddr))
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	case err != nil:
		h.metrics.ObserveAuth("error")
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.RespondErrorAs(w, http.StatusInternalServerError, err)
		return
	}

	h.metrics.ObserveAuth("issued")
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, User: identity})
}

// Me echoes the identity attached by the access gate.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	httpx.JSON(w, http.StatusOK, identity)
}
