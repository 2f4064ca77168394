package rbac

import "strings"

// Role is the single role an identity holds.
type Role string

const (
	RoleSaaSAdmin   Role = "Administrator SaaS"
	RoleTenantOwner Role = "Tenant Owner"
	RoleStoreAdmin  Role = "Admin Toko"
	RoleCashier     Role = "Kasir"
)

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleSaaSAdmin, RoleTenantOwner, RoleStoreAdmin, RoleCashier}
}

// ParseRole maps a stored role name to a Role. Matching ignores surrounding
// whitespace and letter case.
func ParseRole(name string) (Role, bool) {
	name = strings.TrimSpace(name)
	for _, role := range Roles() {
		if strings.EqualFold(string(role), name) {
			return role, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := registry[r]
	return ok
}

// BypassesTenantScope reports whether r sees rows of every tenant.
func (r Role) BypassesTenantScope() bool {
	return r == RoleSaaSAdmin
}

// BypassesStoreScope reports whether r sees rows of every store in its tenant.
func (r Role) BypassesStoreScope() bool {
	return r == RoleSaaSAdmin || r == RoleTenantOwner
}

func (r Role) String() string {
	return string(r)
}
