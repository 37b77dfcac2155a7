package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for sessions. Implementations must
// be safe for concurrent use.
type Repository interface {
	// CreateSession stores a new active session for the user
	CreateSession(ctx context.Context, userID uuid.UUID) (*Session, error)

	// EndSession marks the session inactive. Returns ErrSessionNotFound
	// if no such session exists.
	EndSession(ctx context.Context, id uuid.UUID) error

	// GetSession retrieves a session by id
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)

	// GetSessionByUserID retrieves the most recent session owned by the user
	GetSessionByUserID(ctx context.Context, userID uuid.UUID) (*Session, error)
}
