package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("users: get: %w", shared.ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: email: required", shared.ErrValidation), http.StatusUnprocessableEntity},
		{"credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.status, decodeProblem(t, rr).Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("dial tcp 10.0.0.1:27017: refused"))
	assert.Empty(t, decodeProblem(t, rr).Detail)
}

func TestRespondErrorAsPassesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondErrorAs(rr, http.StatusBadRequest, errors.New("store unavailable"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "store unavailable", decodeProblem(t, rr).Detail)

	rr = httptest.NewRecorder()
	RespondErrorAs(rr, http.StatusBadRequest, shared.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","_id":"x"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "a", target.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.Error(t, DecodeJSON(req, &target))
}
