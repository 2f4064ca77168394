// Package route gives handlers logical names ("products.index") independent
// of their URL paths, the way menus and guards refer to them.
package route

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Current describes the route being served.
type Current struct {
	Name  string
	Query url.Values
}

// IsPasswordManagement reports whether the route belongs to the password pages,
// which must stay reachable while a password change is enforced.
func (c Current) IsPasswordManagement() bool {
	return c.Name == PasswordGroup || strings.HasPrefix(c.Name, PasswordGroup+".")
}

type currentKey struct{}

// WithCurrent stores cur in ctx.
func WithCurrent(ctx context.Context, cur Current) context.Context {
	return context.WithValue(ctx, currentKey{}, cur)
}

// CurrentFrom returns the route stored in ctx; the zero value when unnamed.
func CurrentFrom(ctx context.Context) Current {
	cur, _ := ctx.Value(currentKey{}).(Current)
	return cur
}

// Named tags requests handled below it with a logical route name.
func Named(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cur := Current{Name: name, Query: r.URL.Query()}
			next.ServeHTTP(w, r.WithContext(WithCurrent(r.Context(), cur)))
		})
	}
}

// Registry maps logical route names to paths.
type Registry struct {
	paths map[string]string
}

// NewRegistry builds a registry from name → path.
func NewRegistry(paths map[string]string) *Registry {
	copied := make(map[string]string, len(paths))
	for name, path := range paths {
		copied[name] = path
	}
	return &Registry{paths: copied}
}

// Path returns the registered path for name.
func (r *Registry) Path(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	path, ok := r.paths[name]
	return path, ok
}

// URL resolves name to a path with query appended in key order. Unknown names
// resolve to "#" so navigation never breaks on a missing route.
func (r *Registry) URL(name string, query map[string]string) string {
	path, ok := r.Path(name)
	if !ok {
		return "#"
	}
	if len(query) == 0 {
		return path
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, url.QueryEscape(k)+"="+url.QueryEscape(query[k]))
	}
	return path + "?" + strings.Join(values, "&")
}
