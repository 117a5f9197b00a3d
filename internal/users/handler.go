package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-catalog/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondErrorAs(w, http.StatusBadRequest, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PublicViews(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get user", slog.Any("error", err))
		}
		httpx.RespondErrorAs(w, http.StatusBadRequest, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.PublicView())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "malformed request body")
		return
	}
	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		if !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("create user", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
		return
	}
	h.logger.Info("user created", slog.String("id", user.ID), slog.String("role", user.Role))
	httpx.JSON(w, http.StatusCreated, user.PublicView())
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "malformed request body")
		return
	}
	user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		if !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("update user", slog.Any("error", err))
		}
		httpx.RespondErrorAs(w, http.StatusUnprocessableEntity, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.PublicView())
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("delete user", slog.Any("error", err))
		}
		httpx.RespondErrorAs(w, http.StatusBadRequest, err)
		return
	}
	httpx.NoContent(w)
}
