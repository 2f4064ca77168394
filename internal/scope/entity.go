package scope

import "github.com/vince123890/website-kasir/internal/access"

// Entity describes a table owned by a tenant, a store, or both.
type Entity struct {
	Table       string
	TenantOwned bool
	StoreOwned  bool
}

// Owned entities. Every read of these goes through Entity.Query.
var (
	Products       = Entity{Table: "products", TenantOwned: true}
	Categories     = Entity{Table: "categories", TenantOwned: true}
	Suppliers      = Entity{Table: "suppliers", TenantOwned: true}
	Customers      = Entity{Table: "customers", TenantOwned: true}
	StockOpnames   = Entity{Table: "stock_opnames", TenantOwned: true}
	PurchaseOrders = Entity{Table: "purchase_orders", TenantOwned: true}

	// Store-owned tables are expected to carry tenant_id as well: tenant
	// owners skip the store filter and rely on the tenant one.
	Stocks        = Entity{Table: "stocks", TenantOwned: true, StoreOwned: true}
	CashRegisters = Entity{Table: "cash_registers", TenantOwned: true, StoreOwned: true}
	StoreSessions = Entity{Table: "store_sessions", TenantOwned: true, StoreOwned: true}
	Transactions  = Entity{Table: "transactions", TenantOwned: true, StoreOwned: true}
)

// Query starts a read against e with every applicable scope applied for ac.
func (e Entity) Query(ac access.Context) *Query {
	q := From(e.Table)
	e.Apply(q, ac)
	return q
}

// Apply narrows an existing query against e.
func (e Entity) Apply(q Filterable, ac access.Context) {
	if e.TenantOwned {
		ApplyTenantScope(q, ac)
	}
	if e.StoreOwned {
		ApplyStoreScope(q, ac)
	}
}

// Visible reports whether ac can be given any rows of e. It is false when a
// scope would apply but the caller lacks the tenant or store to narrow by, so
// callers can return nothing instead of an unfiltered read.
func (e Entity) Visible(ac access.Context) bool {
	if !ac.Authenticated {
		return false
	}
	if e.TenantOwned && !ac.BypassesTenantScope() {
		if _, ok := ac.Tenant(); !ok {
			return false
		}
	}
	if e.StoreOwned && !ac.BypassesStoreScope() {
		if _, ok := ac.Store(); !ok {
			return false
		}
	}
	return true
}
