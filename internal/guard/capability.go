package guard

import (
	"net/http"
	"strings"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/i18n"
)

// RequireAny passes callers holding at least one of perms.
func (g *Guard) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return g.require(func(ac access.Context) bool {
		for _, p := range required {
			if ac.Can(p) {
				return true
			}
		}
		return len(required) == 0
	})
}

// RequireAll passes callers holding every one of perms.
func (g *Guard) RequireAll(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return g.require(func(ac access.Context) bool {
		for _, p := range required {
			if !ac.Can(p) {
				return false
			}
		}
		return true
	})
}

func (g *Guard) require(allowed func(access.Context) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed(access.FromContext(r.Context())) {
				next.ServeHTTP(w, r)
				return
			}
			g.abort(w, r, GateCapability, http.StatusForbidden, i18n.MsgForbidden)
		})
	}
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
