package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserRepository implements UserRepository with a mutex-guarded
// map. Meant for tests and single-process desktop hosts.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*User
	byName map[string]uuid.UUID
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[uuid.UUID]*User),
		byName: make(map[string]uuid.UUID),
	}
}

// GetUserByID retrieves a user by id.
func (m *MemoryUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MemoryUserRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *m.byID[id]
	return &out, nil
}

// CreateUser stores a new user record.
func (m *MemoryUserRepository) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[user.Username]; exists {
		return ErrUsernameExists
	}
	stored := *user
	m.byID[user.ID] = &stored
	m.byName[user.Username] = user.ID
	return nil
}

// UpdateUser replaces an existing user record.
func (m *MemoryUserRepository) UpdateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.byID[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if old.Username != user.Username {
		delete(m.byName, old.Username)
		m.byName[user.Username] = user.ID
	}
	stored := *user
	m.byID[user.ID] = &stored
	return nil
}

// GetRoleForUser returns the role assigned to the user.
func (m *MemoryUserRepository) GetRoleForUser(ctx context.Context, id uuid.UUID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.Role, nil
}

// UpdateTwoFactorSecret persists a provisioned two-factor secret.
func (m *MemoryUserRepository) UpdateTwoFactorSecret(ctx context.Context, id uuid.UUID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.TwoFactorSecret = secret
	return nil
}

// Count reports the number of stored users.
func (m *MemoryUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

var _ UserRepository = (*MemoryUserRepository)(nil)
