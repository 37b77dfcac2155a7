package pkce

import "errors"

var (
	// ErrInvalidKeyLength indicates a non-positive key length was requested
	ErrInvalidKeyLength = errors.New("pkce: key length must be positive")

	// ErrRandomSourceFailure indicates crypto/rand could not be read
	ErrRandomSourceFailure = errors.New("pkce: failed to read from secure random source")
)
