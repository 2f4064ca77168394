package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordLifetime applies when no lifetime is configured.
const DefaultPasswordLifetime = 90 * 24 * time.Hour

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	lifetime time.Duration
	now      func() time.Time
}

// NewService constructs a new Service. Passwords set through it expire after
// lifetime.
func NewService(repo Repository, lifetime time.Duration) *Service {
	if lifetime <= 0 {
		lifetime = DefaultPasswordLifetime
	}
	return &Service{repo: repo, lifetime: lifetime, now: time.Now}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies current, stores next and returns the new expiry.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) (time.Time, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("auth: load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return time.Time{}, ErrCurrentPasswordInvalid
	}
	if current == next {
		return time.Time{}, ErrPasswordReused
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return time.Time{}, fmt.Errorf("auth: hash password: %w", err)
	}
	expiresAt := s.now().Add(s.lifetime)
	if err := s.repo.UpdatePassword(ctx, userID, string(hash), expiresAt); err != nil {
		return time.Time{}, fmt.Errorf("auth: update password: %w", err)
	}
	return expiresAt, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
