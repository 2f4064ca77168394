package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vince123890/website-kasir/internal/rbac"
)

// ErrIdentityNotFound indicates the session points at a user that no longer exists.
var ErrIdentityNotFound = errors.New("access: identity not found")

// IdentityStore loads identities for the current request.
type IdentityStore interface {
	FindIdentity(ctx context.Context, id int64) (*Identity, error)
}

// PGIdentityStore implements IdentityStore on PostgreSQL.
type PGIdentityStore struct {
	pool *pgxpool.Pool
}

// NewPGIdentityStore constructs a PostgreSQL identity store.
func NewPGIdentityStore(pool *pgxpool.Pool) *PGIdentityStore {
	return &PGIdentityStore{pool: pool}
}

// The first assigned role wins when a user carries more than one.
const findIdentitySQL = `
SELECT u.id, u.email, u.name, u.tenant_id, u.store_id, u.must_change_password, u.password_expires_at,
       COALESCE((
           SELECT r.name FROM user_roles ur
           JOIN roles r ON r.id = ur.role_id
           WHERE ur.user_id = u.id
           ORDER BY ur.id
           LIMIT 1
       ), '')
FROM users u
WHERE u.id = $1 AND u.is_active`

// FindIdentity fetches the identity with its first assigned role.
func (s *PGIdentityStore) FindIdentity(ctx context.Context, id int64) (*Identity, error) {
	var (
		identity  Identity
		tenantID  pgtype.Int8
		storeID   pgtype.Int8
		expiresAt pgtype.Timestamptz
		roleName  string
	)
	err := s.pool.QueryRow(ctx, findIdentitySQL, id).Scan(
		&identity.ID, &identity.Email, &identity.Name,
		&tenantID, &storeID, &identity.MustChangePassword, &expiresAt, &roleName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("access: find identity: %w", err)
	}
	if tenantID.Valid {
		identity.TenantID = ID(tenantID.Int64)
	}
	if storeID.Valid {
		identity.StoreID = ID(storeID.Int64)
	}
	if expiresAt.Valid {
		t := expiresAt.Time.In(time.UTC)
		identity.PasswordExpiresAt = &t
	}
	if role, ok := rbac.ParseRole(roleName); ok {
		identity.Role = role
	}
	return &identity, nil
}

var _ IdentityStore = (*PGIdentityStore)(nil)
