package scope

import "github.com/vince123890/website-kasir/internal/access"

// Column names carrying ownership.
const (
	TenantColumn = "tenant_id"
	StoreColumn  = "store_id"
)

// ApplyTenantScope narrows q to the caller's tenant. Unauthenticated callers,
// SaaS administrators and identities without a tenant leave q untouched;
// blocking those is the route guards' job.
func ApplyTenantScope(q Filterable, ac access.Context) {
	if !ac.Authenticated || ac.BypassesTenantScope() {
		return
	}
	tenantID, ok := ac.Tenant()
	if !ok {
		return
	}
	q.WhereEq(qualify(q, TenantColumn), tenantID)
}

// ApplyStoreScope narrows q to the caller's store. SaaS administrators and
// tenant owners see every store.
func ApplyStoreScope(q Filterable, ac access.Context) {
	if !ac.Authenticated || ac.BypassesStoreScope() {
		return
	}
	storeID, ok := ac.Store()
	if !ok {
		return
	}
	q.WhereEq(qualify(q, StoreColumn), storeID)
}

func qualify(q Filterable, column string) string {
	if table := q.Table(); table != "" {
		return table + "." + column
	}
	return column
}
