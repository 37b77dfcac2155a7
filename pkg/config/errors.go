package config

import "errors"

var (
	// ErrNilPointer indicates Load was called with a nil destination
	ErrNilPointer = errors.New("config: destination must be a non-nil pointer")

	// ErrParse wraps env parsing failures (missing required vars, bad values)
	ErrParse = errors.New("config: failed to parse environment")
)
