package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the persistence port for user records. It is safe
// to call with at most one in-flight login per provider; implementations
// backing concurrent multi-provider use must synchronize internally.
type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	GetRoleForUser(ctx context.Context, id uuid.UUID) (string, error)

	// UpdateTwoFactorSecret persists a provisioned two-factor secret.
	// Matches the totp.SecretStore port so a repository can back both.
	UpdateTwoFactorSecret(ctx context.Context, id uuid.UUID, secret string) error
}
