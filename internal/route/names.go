package route

// Logical route names referenced from code.
const (
	Dashboard      = "dashboard"
	Login          = "login"
	Logout         = "logout"
	PasswordGroup  = "password"
	PasswordEdit   = "password.edit"
	PasswordUpdate = "password.update"

	ProductsIndex        = "products.index"
	SuppliersIndex       = "suppliers.index"
	TenantSuppliersIndex = "tenants.suppliers.index"
	StocksIndex          = "stocks.index"
	StoreStocksIndex     = "stores.stocks.index"
	TransactionsIndex    = "transactions.index"
)

// Paths lists every route of the application. Not all of them are served by
// this module; menus still link to them.
var Paths = map[string]string{
	Dashboard:      "/",
	Login:          "/auth/login",
	Logout:         "/auth/logout",
	PasswordEdit:   "/password/change",
	PasswordUpdate: "/password/change",

	"tenants.index":  "/admin/tenants",
	"tenants.create": "/admin/tenants/create",
	"plans.index":    "/admin/plans",
	"users.index":    "/users",
	"users.create":   "/users/create",
	"stores.index":   "/stores",
	"stores.create":  "/stores/create",

	"categories.index":     "/categories",
	ProductsIndex:          "/products",
	"products.create":      "/products/create",
	SuppliersIndex:         "/suppliers",
	TenantSuppliersIndex:   "/tenants/{tenant_id}/suppliers",
	"customers.index":      "/customers",
	StocksIndex:            "/stocks",
	StoreStocksIndex:       "/stores/{store_id}/stocks",
	"stock-opnames.index":  "/stock-opnames",
	"stock-opnames.create": "/stock-opnames/create",
	"adjustments.index":    "/stock-adjustments",
	"unpacking.index":      "/unpacking",

	"purchase-orders.index":  "/purchase-orders",
	"purchase-orders.create": "/purchase-orders/create",

	"pos.index":            "/pos",
	TransactionsIndex:      "/transactions",
	"cash-registers.index": "/cash-registers",
	"store-sessions.index": "/store-sessions",

	"reports.sales": "/reports/sales",
	"reports.stock": "/reports/stock",
}
