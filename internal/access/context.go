package access

import "context"

type identityContextKey struct{}

type requestAccess struct {
	identity *Identity
	access   Context
}

// WithIdentity stores the identity and its derived Context in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, requestAccess{identity: id, access: FromIdentity(id)})
}

// FromContext returns the caller's Context; unauthenticated when absent.
func FromContext(ctx context.Context) Context {
	ra, _ := ctx.Value(identityContextKey{}).(requestAccess)
	return ra.access
}

// IdentityFrom returns the identity stored in ctx, or nil.
func IdentityFrom(ctx context.Context) *Identity {
	ra, _ := ctx.Value(identityContextKey{}).(requestAccess)
	return ra.identity
}
