// Package rbac enforces the route access policy: an allow-list of public
// routes plus a table of method, path and role rules.
package rbac

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

// AnyRole in a rule's role set admits every authenticated caller.
const AnyRole = "*"

// ErrInvalidPolicy wraps every policy load or validation failure.
var ErrInvalidPolicy = errors.New("rbac: invalid policy")

// Route identifies a method and path pattern.
type Route struct {
	Method string `yaml:"method" toml:"method"`
	Path   string `yaml:"path" toml:"path"`
}

// Rule grants the listed roles access to a route.
type Rule struct {
	Method string   `yaml:"method" toml:"method"`
	Path   string   `yaml:"path" toml:"path"`
	Roles  []string `yaml:"roles" toml:"roles"`
}

// Document is the on-disk policy shape.
type Document struct {
	Public []Route `yaml:"public" toml:"public"`
	Rules  []Rule  `yaml:"rules" toml:"rules"`
}

// Policy is the compiled, read-only form of a Document.
type Policy struct {
	public []compiledRoute
	rules  []compiledRule
}

type compiledRoute struct {
	method   string
	segments []string
}

type compiledRule struct {
	compiledRoute
	roles map[string]struct{}
}

var knownMethods = map[string]struct{}{
	"*":                {},
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() (*Policy, error) {
	return ParsePolicy(defaultPolicyYAML, "yaml")
}

// LoadPolicy reads a policy file, choosing the decoder by extension. An empty
// path selects the embedded default.
func LoadPolicy(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPolicy()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rbac: read policy: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParsePolicy(data, "yaml")
	case ".toml":
		return ParsePolicy(data, "toml")
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidPolicy, ext)
	}
}

// ParsePolicy decodes and compiles a policy in the given format (yaml or toml).
func ParsePolicy(data []byte, format string) (*Policy, error) {
	var doc Document
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidPolicy, undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPolicy, format)
	}
	return Compile(doc)
}

// Compile validates doc and freezes it into a Policy.
func Compile(doc Document) (*Policy, error) {
	p := &Policy{}
	for i, route := range doc.Public {
		compiled, err := compileRoute(route.Method, route.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: public[%d]: %v", ErrInvalidPolicy, i, err)
		}
		p.public = append(p.public, compiled)
	}
	for i, rule := range doc.Rules {
		compiled, err := compileRoute(rule.Method, rule.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: rules[%d]: %v", ErrInvalidPolicy, i, err)
		}
		roles := normalizeRoles(rule.Roles)
		if len(roles) == 0 {
			return nil, fmt.Errorf("%w: rules[%d]: no roles", ErrInvalidPolicy, i)
		}
		p.rules = append(p.rules, compiledRule{compiledRoute: compiled, roles: roles})
	}
	return p, nil
}

// IsPublic reports whether the route is on the unauthenticated allow-list.
func (p *Policy) IsPublic(method, path string) bool {
	segments := splitPath(path)
	for _, route := range p.public {
		if route.matches(method, segments) {
			return true
		}
	}
	return false
}

// Allows reports whether any rule matching the route admits role.
func (p *Policy) Allows(role, method, path string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	segments := splitPath(path)
	for _, rule := range p.rules {
		if !rule.matches(method, segments) {
			continue
		}
		if _, ok := rule.roles[AnyRole]; ok && role != "" {
			return true
		}
		if _, ok := rule.roles[role]; ok {
			return true
		}
	}
	return false
}

func compileRoute(method, path string) (compiledRoute, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := knownMethods[method]; !ok {
		return compiledRoute{}, fmt.Errorf("unknown method %q", method)
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		return compiledRoute{}, fmt.Errorf("path %q must start with /", path)
	}
	segments := splitPath(path)
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = "*"
		}
	}
	return compiledRoute{method: method, segments: segments}, nil
}

func (r compiledRoute) matches(method string, segments []string) bool {
	if r.method != "*" && r.method != strings.ToUpper(method) {
		return false
	}
	if len(r.segments) != len(segments) {
		return false
	}
	for i, seg := range r.segments {
		if seg == "*" {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}

// splitPath turns "/users/42/" into ["users", "42"]; "/" yields an empty slice.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}

func normalizeRoles(roles []string) map[string]struct{} {
	unique := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		unique[r] = struct{}{}
	}
	return unique
}
