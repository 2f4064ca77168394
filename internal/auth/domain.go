package auth

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned by repositories when no account matches.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrInvalidCredentials covers unknown emails, wrong passwords and inactive accounts alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrCurrentPasswordInvalid is returned when a password change fails the
	// current password check.
	ErrCurrentPasswordInvalid = errors.New("auth: current password invalid")
	// ErrPasswordReused is returned when the new password equals the current one.
	ErrPasswordReused = errors.New("auth: new password must differ from current password")
)

// User represents an authenticated user account.
type User struct {
	ID                 int64
	Email              string
	Name               string
	PasswordHash       string
	IsActive           bool
	MustChangePassword bool
	PasswordExpiresAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
