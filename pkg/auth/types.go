package auth

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifiers for the supported identity providers.
const (
	ProviderGithub   = "github"
	ProviderFacebook = "facebook"
	ProviderLinkedin = "linkedin"
	ProviderTwitter  = "twitter"
	ProviderGoogle   = "google"
	ProviderPassword = "password"
)

// DefaultRole is assigned to accounts created on first login.
const DefaultRole = "user"

// User is the local identity record. Accounts created through an OAuth
// provider carry an empty password hash; a two-factor secret, once
// provisioned, stays on the record until explicitly rotated.
type User struct {
	ID              uuid.UUID
	Username        string
	Email           string
	PasswordHash    []byte
	TwoFactorSecret string
	Role            string
	CreatedAt       time.Time
}

// AuthenticationResponse is the core's output value, constructed fresh
// per attempt. SessionID is uuid.Nil on failure. AccessToken carries
// the provider token for audit and debugging only; it is never needed
// to use the session.
type AuthenticationResponse struct {
	Success     bool
	SessionID   uuid.UUID
	AccessToken string
	NewAccount  bool
}

// ProviderProfile is the normalized view of an external identity
// fetched from a provider's profile endpoint.
type ProviderProfile struct {
	ProviderUserID string // stable external id
	Username       string // login where the provider has one, display name otherwise
	Email          string // may be empty for providers that withhold it
	Name           string
}
