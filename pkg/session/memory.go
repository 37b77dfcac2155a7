package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository implements Repository with a mutex-guarded map.
// Suitable for tests and single-process desktop hosts; sessions do not
// survive a restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMemoryRepository creates an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[uuid.UUID]*Session)}
}

// CreateSession stores a new active session for the user.
func (m *MemoryRepository) CreateSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	s := NewSession(userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *s
	m.sessions[s.ID] = &stored
	return s, nil
}

// EndSession marks the session inactive.
func (m *MemoryRepository) EndSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if !s.Active {
		return ErrSessionEnded
	}
	s.Active = false
	return nil
}

// GetSession retrieves a session by id.
func (m *MemoryRepository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

// GetSessionByUserID retrieves the most recently created session owned
// by the user.
func (m *MemoryRepository) GetSessionByUserID(ctx context.Context, userID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Session
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrSessionNotFound
	}
	out := *latest
	return &out, nil
}

var _ Repository = (*MemoryRepository)(nil)
