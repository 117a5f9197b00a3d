package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-catalog/internal/auth"
	"github.com/odyssey-erp/odyssey-catalog/internal/observability"
	"github.com/odyssey-erp/odyssey-catalog/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

// DefaultTokenHeader carries the bearer token.
const DefaultTokenHeader = "x-access-token"

// unauthenticatedDetail is the only 401 detail; the cause goes to the log.
const unauthenticatedDetail = "authentication required"

// TokenValidator decodes a presented token into the caller's identity.
type TokenValidator interface {
	Validate(raw string) (users.Public, error)
}

// Middleware is the access gate in front of every route.
type Middleware struct {
	Policy    *Policy
	Validator TokenValidator
	Header    string
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Handler wraps next with token validation and the role check.
func (m Middleware) Handler(next http.Handler) http.Handler {
	header := m.Header
	if header == "" {
		header = DefaultTokenHeader
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(header))

		if m.Policy.IsPublic(r.Method, r.URL.Path) {
			m.Metrics.ObserveGate("public")
			if raw != "" {
				if identity, err := m.Validator.Validate(raw); err == nil {
					r = r.WithContext(auth.ContextWithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.Validator.Validate(raw)
		if err != nil {
			m.Metrics.ObserveGate("unauthorized")
			logger.Warn("access denied",
				slog.String("path", r.URL.Path),
				slog.String("method", r.Method),
				slog.String("reason", unauthorizedReason(err)),
			)
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", unauthenticatedDetail)
			return
		}

		if !m.Policy.Allows(identity.Role, r.Method, r.URL.Path) {
			m.Metrics.ObserveGate("forbidden")
			logger.Warn("access forbidden",
				slog.String("path", r.URL.Path),
				slog.String("method", r.Method),
				slog.String("role", identity.Role),
			)
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
			return
		}

		m.Metrics.ObserveGate("allowed")
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}

func unauthorizedReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "token expired"
	default:
		return "invalid token"
	}
}
