package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

// Sentinel errors for the HTTP boundary.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// RespondErrorAs maps well-known errors like RespondError and falls back to
// fallback with the error message passed through.
func RespondErrorAs(w http.ResponseWriter, fallback int, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		RespondError(w, err)
		return
	}
	Problem(w, fallback, http.StatusText(fallback), err.Error())
}
