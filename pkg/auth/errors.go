package auth

import "errors"

// General authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// OAuth-specific errors
var (
	ErrInvalidCode      = errors.New("invalid OAuth code")
	ErrNoPrimaryEmail   = errors.New("no primary email from provider")
	ErrMissingProfileID = errors.New("provider profile missing user id")
	ErrMissingUsername  = errors.New("provider profile missing username")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrVerifierConsumed = errors.New("PKCE verifier already consumed")
	ErrMissingAuthCode  = errors.New("callback carried no authorization code")
)

// Adapter configuration errors, fatal at construction
var (
	ErrMissingClientID     = errors.New("missing OAuth client id")
	ErrMissingClientSecret = errors.New("missing OAuth client secret")
	ErrMissingRedirectURL  = errors.New("missing OAuth redirect url")
)

// Two-factor errors
var (
	ErrTwoFactorRequired  = errors.New("two-factor verification required but no prompt configured")
	ErrTwoFactorCancelled = errors.New("two-factor verification cancelled")
)
