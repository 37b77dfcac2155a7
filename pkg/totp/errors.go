package totp

import "errors"

var (
	ErrMissingSecret        = errors.New("totp: missing secret")
	ErrInvalidSecret        = errors.New("totp: invalid secret")
	ErrMissingAccountName   = errors.New("totp: missing account name")
	ErrMissingIssuer        = errors.New("totp: missing issuer")
	ErrInvalidCode          = errors.New("totp: invalid code format")
	ErrSecretGeneration     = errors.New("totp: failed to generate secret key")
	ErrSecretNotPersisted   = errors.New("totp: failed to persist two-factor secret")
	ErrVerificationRejected = errors.New("totp: code rejected")
)
