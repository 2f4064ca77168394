package menu

import (
	"regexp"
	"strings"

	"github.com/vince123890/website-kasir/internal/route"
)

// IsActiveRoute reports whether the menu route name matches the current
// route. Rules in order: exact name (query constraints must all match),
// wildcard pattern, then hierarchical prefix. Query constraints only apply to
// the exact rule.
func IsActiveRoute(cur route.Current, name string, query map[string]string) bool {
	if name == "" {
		return false
	}
	if cur.Name == name {
		for key, want := range query {
			if cur.Query.Get(key) != want {
				return false
			}
		}
		return true
	}
	if strings.Contains(name, "*") {
		return wildcard(name).MatchString(cur.Name)
	}
	return strings.HasPrefix(cur.Name, name+".")
}

func wildcard(name string) *regexp.Regexp {
	parts := strings.Split(name, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}
