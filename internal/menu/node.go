// Package menu resolves the role-specific navigation tree: permission
// pruning, active-route matching, badge counts and breadcrumbs.
package menu

import "github.com/vince123890/website-kasir/internal/rbac"

// BadgeKind names one of the registered count producers.
type BadgeKind int

const (
	BadgeNone BadgeKind = iota
	BadgePendingPurchaseOrders
	BadgeLowStock
	BadgeOpenStoreSessions
	BadgeDraftStockOpnames
)

var badgeNames = map[string]BadgeKind{
	"pending_purchase_orders": BadgePendingPurchaseOrders,
	"low_stock":               BadgeLowStock,
	"open_store_sessions":     BadgeOpenStoreSessions,
	"draft_stock_opnames":     BadgeDraftStockOpnames,
}

// ParseBadgeKind maps a configured badge name to its kind. Empty and unknown
// names yield BadgeNone; ok is false only for unknown non-empty names.
func ParseBadgeKind(name string) (BadgeKind, bool) {
	if name == "" {
		return BadgeNone, true
	}
	kind, ok := badgeNames[name]
	return kind, ok
}

func (k BadgeKind) String() string {
	for name, kind := range badgeNames {
		if kind == k {
			return name
		}
	}
	return "none"
}

// Node is one entry of a configured menu tree. An empty Route marks a pure
// section header; an empty Permission means visible to every holder of the role.
type Node struct {
	Label      string
	Route      string
	Icon       string
	Permission string
	Query      map[string]string
	Badge      BadgeKind
	Children   []Node
}

// HasChildren reports whether n is a container.
func (n Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Trees holds one menu tree per role.
type Trees map[rbac.Role][]Node

// Item is a Node resolved for one request.
type Item struct {
	Label    string
	Icon     string
	Route    string
	URL      string
	Active   bool
	Badge    *int
	Children []Item
}

// Crumb is one breadcrumb entry. URL is empty for the current page and for
// section headers without a route; only the terminal entry is Current.
type Crumb struct {
	Label   string
	URL     string
	Current bool
}
