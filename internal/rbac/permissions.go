package rbac

import "sort"

// Capabilities checked by menus and route guards.
const (
	PermDashboardView = "dashboard.view"

	PermTenantsView   = "tenants.view"
	PermTenantsManage = "tenants.manage"
	PermPlansManage   = "plans.manage"

	PermStoresView   = "stores.view"
	PermStoresManage = "stores.manage"
	PermUsersView    = "users.view"
	PermUsersManage  = "users.manage"

	PermProductsView    = "products.view"
	PermProductsManage  = "products.manage"
	PermCategoriesView  = "categories.view"
	PermSuppliersView   = "suppliers.view"
	PermSuppliersManage = "suppliers.manage"
	PermCustomersView   = "customers.view"
	PermCustomersManage = "customers.manage"

	PermStocksView         = "stocks.view"
	PermStocksAdjust       = "stocks.adjust"
	PermStockOpnamesView   = "stock_opnames.view"
	PermStockOpnamesManage = "stock_opnames.manage"
	PermUnpackingManage    = "unpacking.manage"

	PermPurchasesView   = "purchases.view"
	PermPurchasesManage = "purchases.manage"

	PermPOSAccess           = "pos.access"
	PermTransactionsView    = "transactions.view"
	PermCashRegistersView   = "cash_registers.view"
	PermCashRegistersManage = "cash_registers.manage"
	PermStoreSessionsManage = "store_sessions.manage"

	PermReportsView = "reports.view"
)

var registry = map[Role]map[string]struct{}{
	RoleSaaSAdmin: set(
		PermDashboardView,
		PermTenantsView, PermTenantsManage, PermPlansManage,
		PermUsersView, PermUsersManage,
		PermReportsView,
	),
	RoleTenantOwner: set(
		PermDashboardView,
		PermStoresView, PermStoresManage,
		PermUsersView, PermUsersManage,
		PermProductsView, PermProductsManage, PermCategoriesView,
		PermSuppliersView, PermSuppliersManage,
		PermCustomersView, PermCustomersManage,
		PermStocksView, PermStockOpnamesView,
		PermPurchasesView, PermPurchasesManage,
		PermTransactionsView, PermCashRegistersView,
		PermReportsView,
	),
	RoleStoreAdmin: set(
		PermDashboardView,
		PermUsersView,
		PermProductsView, PermProductsManage, PermCategoriesView,
		PermSuppliersView, PermCustomersView, PermCustomersManage,
		PermStocksView, PermStocksAdjust,
		PermStockOpnamesView, PermStockOpnamesManage, PermUnpackingManage,
		PermPurchasesView, PermPurchasesManage,
		PermTransactionsView,
		PermCashRegistersView, PermCashRegistersManage, PermStoreSessionsManage,
		PermReportsView,
	),
	RoleCashier: set(
		PermDashboardView,
		PermPOSAccess,
		PermProductsView, PermStocksView,
		PermCustomersView,
		PermTransactionsView,
		PermCashRegistersView, PermStoreSessionsManage,
	),
}

func set(perms ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}

// Can reports whether role r holds capability perm. Unknown roles hold nothing.
func Can(r Role, perm string) bool {
	perms, ok := registry[r]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// Capabilities returns the sorted capability names granted to r.
func Capabilities(r Role) []string {
	perms := registry[r]
	out := make([]string, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
