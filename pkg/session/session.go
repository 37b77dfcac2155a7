package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is an ephemeral authorization grant bound to a user. It is a
// server-side handle looked up by id; ending it revokes the grant.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates an active session for the given user.
func NewSession(userID uuid.UUID) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// IsActive reports whether the session can still be presented for
// authorization checks.
func (s *Session) IsActive() bool {
	return s != nil && s.Active
}
