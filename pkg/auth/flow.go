package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/loopback"
	"github.com/dmitrymomot/authkit/pkg/pkce"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
	"github.com/dmitrymomot/authkit/pkg/session"
)

const defaultWaitTimeout = 5 * time.Minute

// OpenURLFunc hands the authorization URL to the user, typically by
// launching the system browser. Returning an error aborts the attempt.
type OpenURLFunc func(url string) error

// OAuthFlow runs one provider's browser-redirect login from start to
// session. It owns nothing long-lived besides its wiring; every call to
// Authenticate is an independent attempt.
type OAuthFlow struct {
	users       UserRepository
	sessions    session.Repository
	adapter     ProviderAdapter
	listener    *loopback.Listener
	openURL     OpenURLFunc
	log         *slog.Logger
	defaultRole string
	waitTimeout time.Duration
}

// OAuthFlowOption configures an OAuthFlow.
type OAuthFlowOption func(*OAuthFlow)

// WithFlowLogger sets the logger for flow diagnostics.
func WithFlowLogger(log *slog.Logger) OAuthFlowOption {
	return func(f *OAuthFlow) {
		if log != nil {
			f.log = log
		}
	}
}

// WithFlowDefaultRole overrides the role assigned to accounts created
// on first login.
func WithFlowDefaultRole(role string) OAuthFlowOption {
	return func(f *OAuthFlow) {
		if role != "" {
			f.defaultRole = role
		}
	}
}

// WithFlowWaitTimeout caps how long an attempt waits for the browser
// callback before giving up.
func WithFlowWaitTimeout(d time.Duration) OAuthFlowOption {
	return func(f *OAuthFlow) {
		if d > 0 {
			f.waitTimeout = d
		}
	}
}

// NewOAuthFlow wires a flow for one provider. The listener may be
// shared across flows; only one attempt runs on it at a time.
func NewOAuthFlow(
	users UserRepository,
	sessions session.Repository,
	adapter ProviderAdapter,
	listener *loopback.Listener,
	openURL OpenURLFunc,
	opts ...OAuthFlowOption,
) *OAuthFlow {
	f := &OAuthFlow{
		users:       users,
		sessions:    sessions,
		adapter:     adapter,
		listener:    listener,
		openURL:     openURL,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultRole: DefaultRole,
		waitTimeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Authenticate runs the full redirect flow and reports the outcome as a
// response value. Failures of any kind collapse into Success=false with
// SessionID=uuid.Nil; the cause is logged, never returned, so callers
// cannot branch on which step leaked.
func (f *OAuthFlow) Authenticate(ctx context.Context) AuthenticationResponse {
	resp, err := f.authenticate(ctx)
	if err != nil {
		f.log.ErrorContext(ctx, "authentication failed",
			logger.Component("oauth_flow"),
			logger.Provider(f.adapter.ProviderID()),
			logger.Error(err),
		)
		return AuthenticationResponse{}
	}
	return resp
}

func (f *OAuthFlow) authenticate(ctx context.Context) (AuthenticationResponse, error) {
	attempt, err := f.listener.Begin()
	if err != nil {
		return AuthenticationResponse{}, err
	}
	defer attempt.Cancel()

	state, err := newStateValue()
	if err != nil {
		return AuthenticationResponse{}, err
	}

	authURL, err := f.adapter.AuthURL(state)
	if err != nil {
		return AuthenticationResponse{}, err
	}

	if err := f.openURL(authURL); err != nil {
		return AuthenticationResponse{}, err
	}

	f.log.InfoContext(ctx, "waiting for provider callback",
		logger.Component("oauth_flow"),
		logger.Provider(f.adapter.ProviderID()),
	)

	waitCtx, cancel := context.WithTimeout(ctx, f.waitTimeout)
	defer cancel()

	cb, err := attempt.Wait(waitCtx)
	if err != nil {
		return AuthenticationResponse{}, err
	}

	profile, accessToken, err := f.adapter.ResolveProfile(ctx, cb)
	if err != nil {
		return AuthenticationResponse{}, err
	}

	user, created, err := f.resolveUser(ctx, profile)
	if err != nil {
		return AuthenticationResponse{}, err
	}

	sess, err := f.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return AuthenticationResponse{}, err
	}

	f.log.InfoContext(ctx, "authenticated",
		logger.Component("oauth_flow"),
		logger.Provider(f.adapter.ProviderID()),
		logger.UserID(user.ID.String()),
		logger.SessionID(sess.ID.String()),
	)

	return AuthenticationResponse{
		Success:     true,
		SessionID:   sess.ID,
		AccessToken: accessToken,
		NewAccount:  created,
	}, nil
}

// resolveUser upserts the local account keyed by the normalized
// provider username. An existing record keeps its id, password hash and
// two-factor secret; only a changed email is written back.
func (f *OAuthFlow) resolveUser(ctx context.Context, profile ProviderProfile) (*User, bool, error) {
	if profile.ProviderUserID == "" {
		return nil, false, ErrMissingProfileID
	}
	username := sanitizer.NormalizeUsername(profile.Username)
	if username == "" {
		return nil, false, ErrMissingUsername
	}

	existing, err := f.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if profile.Email != "" && existing.Email != sanitizer.NormalizeEmail(profile.Email) {
			existing.Email = sanitizer.NormalizeEmail(profile.Email)
			if err := f.users.UpdateUser(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	case errors.Is(err, ErrUserNotFound):
		user := &User{
			ID:        uuid.New(),
			Username:  username,
			Email:     sanitizer.NormalizeEmail(profile.Email),
			Role:      f.defaultRole,
			CreatedAt: time.Now().UTC(),
		}
		if err := f.users.CreateUser(ctx, user); err != nil {
			return nil, false, err
		}
		return user, true, nil
	default:
		return nil, false, err
	}
}

// newStateValue produces the opaque CSRF state carried through the
// redirect round trip.
func newStateValue() (string, error) {
	raw, err := pkce.GenerateRandomKey(16)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
