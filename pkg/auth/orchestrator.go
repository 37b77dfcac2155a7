package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/totp"
)

// TwoFactorPrompt collects a one-time code from the user. During
// enrollment the challenge carries the fresh secret, provisioning URI
// and QR code to display; on subsequent logins it is nil. Returning
// ok=false cancels the login.
type TwoFactorPrompt func(ctx context.Context, enrollment *totp.Challenge) (code string, ok bool, err error)

// Orchestrator coordinates the authentication surfaces: password
// logins, the registered OAuth provider flows, the optional two-factor
// gate and the current-session handle. It is safe for concurrent use,
// though providers themselves admit one attempt at a time.
type Orchestrator struct {
	users     UserRepository
	sessions  session.Repository
	passwords *PasswordAuthenticator
	flows     map[string]*OAuthFlow

	verifier *totp.Verifier
	prompt   TwoFactorPrompt
	enroll   bool

	autoProvision bool
	defaultRole   string
	log           *slog.Logger

	mu      sync.Mutex
	current *session.Session
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOAuthFlow registers a provider flow under its identifier.
func WithOAuthFlow(providerID string, flow *OAuthFlow) OrchestratorOption {
	return func(o *Orchestrator) {
		o.flows[providerID] = flow
	}
}

// WithTwoFactor enables the two-factor gate for users that already hold
// a secret. The prompt is invoked with a nil challenge.
func WithTwoFactor(verifier *totp.Verifier, prompt TwoFactorPrompt) OrchestratorOption {
	return func(o *Orchestrator) {
		o.verifier = verifier
		o.prompt = prompt
	}
}

// WithTwoFactorEnrollment additionally provisions a secret for users
// that have none, walking them through QR setup at login time.
func WithTwoFactorEnrollment() OrchestratorOption {
	return func(o *Orchestrator) {
		o.enroll = true
	}
}

// WithAutoProvision controls whether a password login for an unknown
// username creates the account. Enabled by default.
func WithAutoProvision(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.autoProvision = enabled
	}
}

// WithDefaultRole overrides the role assigned to auto-provisioned
// accounts.
func WithDefaultRole(role string) OrchestratorOption {
	return func(o *Orchestrator) {
		if role != "" {
			o.defaultRole = role
		}
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(log *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// NewOrchestrator wires the authentication core. The password
// authenticator is always available; provider flows and two-factor are
// opt-in via options.
func NewOrchestrator(users UserRepository, sessions session.Repository, passwords *PasswordAuthenticator, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		users:         users,
		sessions:      sessions,
		passwords:     passwords,
		flows:         make(map[string]*OAuthFlow),
		autoProvision: true,
		defaultRole:   DefaultRole,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthenticateWithPassword verifies the credentials and opens a
// session. When auto-provisioning is on, an unknown username registers
// a new account with the given password. All failures collapse into
// Success=false.
func (o *Orchestrator) AuthenticateWithPassword(ctx context.Context, username, password string) AuthenticationResponse {
	resp, err := o.passwordLogin(ctx, username, password)
	if err != nil {
		o.log.ErrorContext(ctx, "password authentication failed",
			logger.Component("orchestrator"),
			logger.Provider(ProviderPassword),
			logger.Error(err),
		)
		return AuthenticationResponse{}
	}
	return resp
}

func (o *Orchestrator) passwordLogin(ctx context.Context, username, password string) (AuthenticationResponse, error) {
	user, err := o.passwords.Authenticate(ctx, username, password)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound) && o.autoProvision:
		user, err = o.provisionUser(ctx, username, password)
		if err != nil {
			return AuthenticationResponse{}, err
		}
		created = true
	default:
		return AuthenticationResponse{}, err
	}

	if err := o.gateTwoFactor(ctx, user); err != nil {
		return AuthenticationResponse{}, err
	}

	sess, err := o.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	o.setCurrent(sess)

	return AuthenticationResponse{
		Success:    true,
		SessionID:  sess.ID,
		NewAccount: created,
	}, nil
}

// AuthenticateWithProvider runs the registered flow for the provider,
// then applies the two-factor gate to the resolved user. A session
// opened by the flow is ended again when the gate rejects the login.
func (o *Orchestrator) AuthenticateWithProvider(ctx context.Context, providerID string) AuthenticationResponse {
	flow, ok := o.flows[providerID]
	if !ok {
		o.log.ErrorContext(ctx, "provider not registered",
			logger.Component("orchestrator"),
			logger.Provider(providerID),
			logger.Error(ErrUnknownProvider),
		)
		return AuthenticationResponse{}
	}

	resp := flow.Authenticate(ctx)
	if !resp.Success {
		return AuthenticationResponse{}
	}

	sess, err := o.sessions.GetSession(ctx, resp.SessionID)
	if err != nil {
		return AuthenticationResponse{}
	}

	user, err := o.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		_ = o.sessions.EndSession(ctx, sess.ID)
		return AuthenticationResponse{}
	}

	if err := o.gateTwoFactor(ctx, user); err != nil {
		_ = o.sessions.EndSession(ctx, sess.ID)
		o.log.WarnContext(ctx, "two-factor gate rejected login",
			logger.Component("orchestrator"),
			logger.Provider(providerID),
			logger.UserID(user.ID.String()),
			logger.Error(err),
		)
		return AuthenticationResponse{}
	}

	o.setCurrent(sess)
	return resp
}

// Logout ends the given session and clears the current-session pointer
// when it matches. Logging out an already-ended session is a no-op so
// callers can retry safely.
func (o *Orchestrator) Logout(ctx context.Context, sessionID uuid.UUID) error {
	o.mu.Lock()
	if o.current != nil && o.current.ID == sessionID {
		o.current = nil
	}
	o.mu.Unlock()

	if err := o.sessions.EndSession(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrSessionEnded) {
			return nil
		}
		return err
	}
	o.log.InfoContext(ctx, "logged out",
		logger.Component("orchestrator"),
		logger.SessionID(sessionID.String()),
	)
	return nil
}

// CurrentSession returns the session opened by the last successful
// login, or nil. Prefer threading the session through context via
// session.WithSession; this accessor exists for single-user callers
// such as CLI tools.
func (o *Orchestrator) CurrentSession() *session.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *Orchestrator) setCurrent(sess *session.Session) {
	o.mu.Lock()
	o.current = sess
	o.mu.Unlock()
}

// provisionUser registers a new account for an unknown username during
// a password login.
func (o *Orchestrator) provisionUser(ctx context.Context, username, password string) (*User, error) {
	hash, err := o.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           uuid.New(),
		Username:     sanitizer.NormalizeUsername(username),
		PasswordHash: hash,
		Role:         o.defaultRole,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	o.log.InfoContext(ctx, "provisioned account",
		logger.Component("orchestrator"),
		logger.UserID(user.ID.String()),
	)
	return user, nil
}

// gateTwoFactor verifies a one-time code when two-factor is configured.
// Users without a secret are enrolled first when enrollment is on,
// otherwise they pass through. The prompt is retried until the code
// verifies or the user cancels.
func (o *Orchestrator) gateTwoFactor(ctx context.Context, user *User) error {
	if o.verifier == nil {
		return nil
	}

	secret := user.TwoFactorSecret
	var enrollment *totp.Challenge

	if secret == "" {
		if !o.enroll {
			return nil
		}
		challenge, err := o.verifier.Setup(ctx, user.ID, user.Username)
		if err != nil {
			return err
		}
		secret = challenge.Secret
		enrollment = challenge
	}

	if o.prompt == nil {
		return ErrTwoFactorRequired
	}

	for {
		code, ok, err := o.prompt(ctx, enrollment)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTwoFactorCancelled
		}
		valid, err := o.verifier.Verify(secret, code)
		if err == nil && valid {
			return nil
		}
		o.log.DebugContext(ctx, "two-factor code rejected",
			logger.Component("orchestrator"),
			logger.UserID(user.ID.String()),
		)
	}
}
