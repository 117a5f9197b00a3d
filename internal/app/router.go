package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-catalog/internal/auth"
	"github.com/odyssey-erp/odyssey-catalog/internal/observability"
	"github.com/odyssey-erp/odyssey-catalog/internal/platform/docstore"
	"github.com/odyssey-erp/odyssey-catalog/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-catalog/internal/products"
	"github.com/odyssey-erp/odyssey-catalog/internal/rbac"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	ProductsHandler *products.Handler
	Gate            rbac.Middleware
	Store           docstore.Pinger
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with catalog defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Metrics:     params.Metrics,
		TokenHeader: params.Gate.Header,
	}) {
		r.Use(mw)
	}
	r.Use(params.Gate.Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello world!"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.Store.Ping(ctx); err != nil {
				params.Logger.Warn("health check", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Get("/me", params.AuthHandler.Me)

	r.Route("/users", func(r chi.Router) {
		r.Post("/authenticate", params.AuthHandler.Authenticate)
		params.UsersHandler.MountRoutes(r)
	})
	r.Route("/products", params.ProductsHandler.MountRoutes)

	return r
}
