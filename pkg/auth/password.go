package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
)

// PasswordAuthenticator verifies username/password credentials against
// stored bcrypt hashes.
type PasswordAuthenticator struct {
	users UserRepository
	cost  int
	log   *slog.Logger
}

// PasswordOption configures a PasswordAuthenticator.
type PasswordOption func(*PasswordAuthenticator)

// WithBcryptCost overrides the bcrypt cost used for new hashes.
func WithBcryptCost(cost int) PasswordOption {
	return func(p *PasswordAuthenticator) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			p.cost = cost
		}
	}
}

// WithPasswordLogger sets the logger for authentication diagnostics.
func WithPasswordLogger(log *slog.Logger) PasswordOption {
	return func(p *PasswordAuthenticator) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPasswordAuthenticator creates a password authenticator backed by
// the given user repository.
func NewPasswordAuthenticator(users UserRepository, opts ...PasswordOption) *PasswordAuthenticator {
	p := &PasswordAuthenticator{
		users: users,
		cost:  bcrypt.DefaultCost,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authenticate looks up the user by normalized username and compares
// the password against the stored hash. A missing user and a wrong
// password return distinct errors; callers presenting to end users
// should collapse them.
func (p *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = sanitizer.NormalizeUsername(username)

	user, err := p.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		p.log.DebugContext(ctx, "password mismatch",
			logger.Component("password"),
			logger.UserID(user.ID.String()),
		)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword produces a bcrypt hash at the configured cost.
func (p *PasswordAuthenticator) HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), p.cost)
}
