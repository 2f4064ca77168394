// Package access derives the per-request access facts (who is calling, with
// which role, for which tenant and store) used by scoping, guards and menus.
package access

import (
	"time"

	"github.com/vince123890/website-kasir/internal/rbac"
)

// Identity is the authenticated user record as supplied by the identity store.
type Identity struct {
	ID                 int64
	Email              string
	Name               string
	TenantID           *int64
	StoreID            *int64
	Role               rbac.Role
	MustChangePassword bool
	PasswordExpiresAt  *time.Time
}

// Context is an immutable snapshot of the caller's access facts. The zero
// value is an unauthenticated caller.
type Context struct {
	Authenticated bool
	IdentityID    int64
	Role          rbac.Role
	TenantID      *int64
	StoreID       *int64
}

// FromIdentity derives a Context from id. A nil identity yields the
// unauthenticated Context.
func FromIdentity(id *Identity) Context {
	if id == nil {
		return Context{}
	}
	return Context{
		Authenticated: true,
		IdentityID:    id.ID,
		Role:          id.Role,
		TenantID:      copyID(id.TenantID),
		StoreID:       copyID(id.StoreID),
	}
}

// Can reports whether the caller holds capability perm.
func (c Context) Can(perm string) bool {
	if !c.Authenticated {
		return false
	}
	return rbac.Can(c.Role, perm)
}

// IsPlatformAdmin reports whether the caller is a SaaS administrator.
func (c Context) IsPlatformAdmin() bool {
	return c.Authenticated && c.Role == rbac.RoleSaaSAdmin
}

// BypassesTenantScope reports whether tenant filtering is skipped for the caller.
func (c Context) BypassesTenantScope() bool {
	return c.Authenticated && c.Role.BypassesTenantScope()
}

// BypassesStoreScope reports whether store filtering is skipped for the caller.
func (c Context) BypassesStoreScope() bool {
	return c.Authenticated && c.Role.BypassesStoreScope()
}

// Tenant returns the caller's tenant ID if it has one.
func (c Context) Tenant() (int64, bool) {
	if c.TenantID == nil {
		return 0, false
	}
	return *c.TenantID, true
}

// Store returns the caller's store ID if it has one.
func (c Context) Store() (int64, bool) {
	if c.StoreID == nil {
		return 0, false
	}
	return *c.StoreID, true
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// ID returns a pointer to v, for building identities in code and tests.
func ID(v int64) *int64 {
	return &v
}
