package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-catalog/internal/observability"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

func postAuthenticate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/users/authenticate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Authenticate(rr, req)
	return rr
}

func TestAuthenticateHandlerIssuesToken(t *testing.T) {
	metrics := observability.NewMetrics()
	svc := newTestService(t, &stubFinder{user: storedElon(t)})
	h := NewHandler(nil, svc, metrics)

	rr := postAuthenticate(t, h, `{"email":"elon@gmail.com","password":"12345"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "elon@gmail.com", resp.User.Email)
}

func TestAuthenticateHandlerRejectsBadCredentials(t *testing.T) {
	h := NewHandler(nil, newTestService(t, &stubFinder{user: storedElon(t)}), nil)

	rr := postAuthenticate(t, h, `{"email":"elon@gmail.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotContains(t, rr.Body.String(), "token\"")

	rr = postAuthenticate(t, h, `{"email":"ghost@gmail.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticateHandlerMalformedBody(t *testing.T) {
	h := NewHandler(nil, newTestService(t, &stubFinder{}), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, postAuthenticate(t, h, `{`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, postAuthenticate(t, h, `{"email":"a@b.io"}`).Code)
}

func TestAuthenticateHandlerInfrastructureError(t *testing.T) {
	h := NewHandler(nil, newTestService(t, &stubFinder{err: errors.New("db down")}), nil)

	rr := postAuthenticate(t, h, `{"email":"a@b.io","password":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	var problem struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Contains(t, problem.Detail, "db down")
	assert.NotContains(t, rr.Body.String(), `"token"`)
}

func TestMeEchoesIdentity(t *testing.T) {
	h := NewHandler(nil, nil, nil)

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), testIdentity))
	rr = httptest.NewRecorder()
	h.Me(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var got users.Public
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, testIdentity, got)
}
