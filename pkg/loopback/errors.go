package loopback

import "errors"

var (
	// ErrAttemptPending indicates another login attempt is already
	// waiting on this listener
	ErrAttemptPending = errors.New("loopback: another attempt is already pending")

	// ErrAttemptCancelled indicates the attempt was cancelled before a
	// callback arrived
	ErrAttemptCancelled = errors.New("loopback: attempt cancelled")

	// ErrEmptyPayload indicates an exchange request with an empty body
	ErrEmptyPayload = errors.New("loopback: empty callback payload")

	// ErrMalformedPayload indicates the callback body carried neither a
	// code nor an access token
	ErrMalformedPayload = errors.New("loopback: malformed callback payload")

	// ErrAlreadyStarted indicates Start was called on a running listener
	ErrAlreadyStarted = errors.New("loopback: listener already started")

	// ErrNotStarted indicates Stop was called before Start
	ErrNotStarted = errors.New("loopback: listener not started")
)
