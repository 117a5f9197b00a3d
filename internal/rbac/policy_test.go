package rbac

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p, err := DefaultPolicy()
	require.NoError(t, err)

	assert.True(t, p.IsPublic(http.MethodPost, "/users/authenticate"))
	assert.True(t, p.IsPublic(http.MethodGet, "/"))
	assert.False(t, p.IsPublic(http.MethodGet, "/users/authenticate"))
	assert.False(t, p.IsPublic(http.MethodGet, "/products"))

	cases := []struct {
		role, method, path string
		want               bool
	}{
		{"user", http.MethodGet, "/products", true},
		{"user", http.MethodGet, "/products/abc", true},
		{"user", http.MethodPost, "/products", false},
		{"admin", http.MethodPost, "/products", true},
		{"admin", http.MethodDelete, "/products/abc", true},
		{"user", http.MethodDelete, "/products/abc", false},
		{"user", http.MethodPost, "/users", false},
		{"admin", http.MethodPost, "/users", true},
		{"admin", http.MethodPut, "/users/u1", true},
		{"user", http.MethodGet, "/users/u1", false},
		{"user", http.MethodGet, "/me", true},
		{"guest", http.MethodGet, "/me", true},
		{"", http.MethodGet, "/me", false},
		{"admin", http.MethodGet, "/unknown", false},
		{"admin", http.MethodGet, "/products/a/b", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.Allows(tc.role, tc.method, tc.path), "%s %s as %q", tc.method, tc.path, tc.role)
	}
}

func TestPathMatchingIgnoresTrailingSlashAndCase(t *testing.T) {
	p, err := Compile(Document{Rules: []Rule{{Method: "get", Path: "/products/{id}/", Roles: []string{"Admin"}}}})
	require.NoError(t, err)

	assert.True(t, p.Allows("admin", http.MethodGet, "/products/1"))
	assert.True(t, p.Allows("ADMIN", "GET", "/products/1/"))
	assert.False(t, p.Allows("admin", http.MethodGet, "/products//"))
	assert.False(t, p.Allows("admin", http.MethodGet, "/products"))
}

func TestAnyRuleMayGrant(t *testing.T) {
	p, err := Compile(Document{Rules: []Rule{
		{Method: "*", Path: "/reports", Roles: []string{"admin"}},
		{Method: "GET", Path: "/reports", Roles: []string{"auditor"}},
	}})
	require.NoError(t, err)

	assert.True(t, p.Allows("auditor", http.MethodGet, "/reports"))
	assert.False(t, p.Allows("auditor", http.MethodPost, "/reports"))
	assert.True(t, p.Allows("admin", http.MethodPost, "/reports"))
}

func TestEmptyPolicyDeniesEverything(t *testing.T) {
	p, err := Compile(Document{})
	require.NoError(t, err)
	assert.False(t, p.IsPublic(http.MethodPost, "/users/authenticate"))
	assert.False(t, p.Allows("admin", http.MethodGet, "/products"))
}

func TestCompileRejectsBadEntries(t *testing.T) {
	docs := map[string]Document{
		"relative path": {Rules: []Rule{{Method: "GET", Path: "products", Roles: []string{"admin"}}}},
		"no roles":      {Rules: []Rule{{Method: "GET", Path: "/products", Roles: []string{" "}}}},
		"bad method":    {Rules: []Rule{{Method: "FETCH", Path: "/products", Roles: []string{"admin"}}}},
		"bad public":    {Public: []Route{{Method: "GET", Path: ""}}},
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(doc)
			assert.True(t, errors.Is(err, ErrInvalidPolicy), "got %v", err)
		})
	}
}

func TestLoadPolicyYAMLAndTOML(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
public:
  - {method: POST, path: /login}
rules:
  - {method: GET, path: "/items/{id}", roles: [viewer]}
`), 0o600))

	tomlPath := filepath.Join(dir, "policy.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[[public]]
method = "POST"
path = "/login"

[[rules]]
method = "GET"
path = "/items/{id}"
roles = ["viewer"]
`), 0o600))

	for _, path := range []string{yamlPath, tomlPath} {
		p, err := LoadPolicy(path)
		require.NoError(t, err, path)
		assert.True(t, p.IsPublic(http.MethodPost, "/login"), path)
		assert.True(t, p.Allows("viewer", http.MethodGet, "/items/7"), path)
		assert.False(t, p.Allows("viewer", http.MethodDelete, "/items/7"), path)
	}
}

func TestLoadPolicyRejectsUnknownKeysAndExtensions(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "typo.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("rulez: []\n"), 0o600))
	_, err := LoadPolicy(yamlPath)
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	tomlPath := filepath.Join(dir, "typo.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[[rules]]\nmethod = \"GET\"\npath = \"/x\"\nroles = [\"a\"]\nrole = \"b\"\n"), 0o600))
	_, err = LoadPolicy(tomlPath)
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	jsonPath := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o600))
	_, err = LoadPolicy(jsonPath)
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	_, err = LoadPolicy(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPolicyEmptyPathUsesDefault(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.True(t, p.IsPublic(http.MethodPost, "/users/authenticate"))
}
