package session

import "errors"

var (
	// ErrSessionNotFound indicates no session exists for the given id or user
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionEnded indicates the session exists but is no longer active
	ErrSessionEnded = errors.New("session: already ended")

	// ErrUnknownUser indicates a session was requested for a user id that
	// does not reference an existing user
	ErrUnknownUser = errors.New("session: user does not exist")

	// ErrEncoding wraps serialization failures in persistent repositories
	ErrEncoding = errors.New("session: failed to encode session")
)
