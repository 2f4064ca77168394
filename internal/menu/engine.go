package menu

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/rbac"
	"github.com/vince123890/website-kasir/internal/route"
)

const (
	homeLabel        = "Home"
	badgeConcurrency = 4
)

// BadgeRecorder observes badge producers that failed.
type BadgeRecorder interface {
	ObserveBadgeFailure(badge string)
}

// Engine resolves navigation for a request. It is safe for concurrent use;
// trees are never mutated after construction.
type Engine struct {
	trees    Trees
	counters Counters
	routes   *route.Registry
	logger   *slog.Logger
	recorder BadgeRecorder
}

// NewEngine builds an Engine. Nil counters disable every badge.
func NewEngine(trees Trees, counters Counters, routes *route.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{trees: trees, counters: counters, routes: routes, logger: logger}
}

// WithRecorder attaches a failure recorder and returns e.
func (e *Engine) WithRecorder(r BadgeRecorder) *Engine {
	e.recorder = r
	return e
}

// MenuByRole returns the role's tree pruned for ac. Unknown roles yield an
// empty menu.
func (e *Engine) MenuByRole(role rbac.Role, ac access.Context) []Node {
	nodes, ok := e.trees[role]
	if !ok {
		return nil
	}
	return Filter(nodes, ac)
}

// Menu returns the caller's own tree.
func (e *Engine) Menu(ac access.Context) []Node {
	if !ac.Authenticated {
		return nil
	}
	return e.MenuByRole(ac.Role, ac)
}

// BadgeCount runs the producer registered for kind. ok is false when there
// is no badge to show: no kind, no producer, no caller, or a failed producer.
func (e *Engine) BadgeCount(ctx context.Context, ac access.Context, kind BadgeKind) (int, bool) {
	if kind == BadgeNone || !ac.Authenticated {
		return 0, false
	}
	count, ok := e.counters[kind]
	if !ok {
		return 0, false
	}
	n, err := count(ctx, ac)
	if err != nil {
		e.logger.Warn("menu: badge failed", slog.String("badge", kind.String()), slog.Any("error", err))
		if e.recorder != nil {
			e.recorder.ObserveBadgeFailure(kind.String())
		}
		return 0, false
	}
	return n, true
}

// ActiveItem finds the first node matching cur in document order. The trail
// holds the matched node's ancestors followed by the node itself.
func (e *Engine) ActiveItem(ac access.Context, cur route.Current) (Node, []Node, bool) {
	trail, ok := search(e.Menu(ac), cur, nil)
	if !ok {
		return Node{}, nil, false
	}
	return trail[len(trail)-1], trail, true
}

func search(nodes []Node, cur route.Current, parents []Node) ([]Node, bool) {
	for _, n := range nodes {
		path := append(append([]Node(nil), parents...), n)
		if n.HasChildren() {
			if found, ok := search(n.Children, cur, path); ok {
				return found, true
			}
		}
		if IsActiveRoute(cur, n.Route, n.Query) {
			return path, true
		}
	}
	return nil, false
}

// Breadcrumb starts at Home and follows the active trail. The last entry is
// marked Current and carries no URL.
func (e *Engine) Breadcrumb(ac access.Context, cur route.Current) []Crumb {
	crumbs := []Crumb{{Label: homeLabel, URL: e.routes.URL(route.Dashboard, nil)}}
	_, trail, ok := e.ActiveItem(ac, cur)
	if !ok {
		return crumbs
	}
	for i, n := range trail {
		c := Crumb{Label: n.Label, Current: i == len(trail)-1}
		if !c.Current {
			c.URL = e.link(n)
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// Navigation resolves the caller's menu into renderable items with badges
// and active flags. Each distinct badge is counted once.
func (e *Engine) Navigation(ctx context.Context, ac access.Context, cur route.Current) []Item {
	nodes := e.Menu(ac)
	if len(nodes) == 0 {
		return nil
	}
	badges := e.resolveBadges(ctx, ac, nodes)
	return e.items(nodes, cur, badges)
}

func (e *Engine) resolveBadges(ctx context.Context, ac access.Context, nodes []Node) map[BadgeKind]int {
	kinds := map[BadgeKind]struct{}{}
	collectBadges(nodes, kinds)
	out := make(map[BadgeKind]int, len(kinds))
	if len(kinds) == 0 {
		return out
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(badgeConcurrency)
	for kind := range kinds {
		g.Go(func() error {
			n, ok := e.BadgeCount(gctx, ac, kind)
			if ok {
				mu.Lock()
				out[kind] = n
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func collectBadges(nodes []Node, into map[BadgeKind]struct{}) {
	for _, n := range nodes {
		if n.Badge != BadgeNone {
			into[n.Badge] = struct{}{}
		}
		collectBadges(n.Children, into)
	}
}

func (e *Engine) items(nodes []Node, cur route.Current, badges map[BadgeKind]int) []Item {
	out := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		it := Item{
			Label: n.Label,
			Icon:  n.Icon,
			Route: n.Route,
		}
		if n.Route != "" {
			it.URL = e.link(n)
			it.Active = IsActiveRoute(cur, n.Route, n.Query)
		}
		if v, ok := badges[n.Badge]; ok {
			it.Badge = &v
		}
		if n.HasChildren() {
			it.Children = e.items(n.Children, cur, badges)
			for _, c := range it.Children {
				if c.Active {
					it.Active = true
				}
			}
		}
		out = append(out, it)
	}
	return out
}

// link resolves a node to a URL. Entries naming a route group ("products" or
// "stocks.*") link to the group's index route.
func (e *Engine) link(n Node) string {
	if n.Route == "" {
		return ""
	}
	name := n.Route
	if _, ok := e.routes.Path(name); !ok {
		name = strings.TrimSuffix(strings.TrimSuffix(name, "*"), ".") + ".index"
	}
	return e.routes.URL(name, n.Query)
}
