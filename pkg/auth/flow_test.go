package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/loopback"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// stubAdapter satisfies ProviderAdapter without any provider traffic.
type stubAdapter struct {
	profile    ProviderProfile
	token      string
	resolveErr error
	lastState  string
}

func (s *stubAdapter) ProviderID() string { return "stub" }

func (s *stubAdapter) AuthURL(state string) (string, error) {
	s.lastState = state
	return "https://provider.example/authorize?state=" + state, nil
}

func (s *stubAdapter) ResolveProfile(ctx context.Context, cb loopback.Callback) (ProviderProfile, string, error) {
	if s.resolveErr != nil {
		return ProviderProfile{}, "", s.resolveErr
	}
	return s.profile, s.token, nil
}

func startTestListener(t *testing.T) *loopback.Listener {
	t.Helper()

	l := loopback.NewListener("stub", loopback.Config{
		Addr:            "127.0.0.1:0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	})
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Stop(context.Background()) })
	return l
}

// redirectWithCode mimics the browser hitting the loopback redirect.
func redirectWithCode(l *loopback.Listener, code string) OpenURLFunc {
	return func(string) error {
		resp, err := http.Get(fmt.Sprintf("http://%s/auth?code=%s", l.Addr(), code))
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

func TestOAuthFlow_Authenticate_CreatesAccount(t *testing.T) {
	t.Parallel()

	users := NewMemoryUserRepository()
	sessions := session.NewMemoryRepository()
	listener := startTestListener(t)
	adapter := &stubAdapter{
		profile: ProviderProfile{
			ProviderUserID: "42",
			Username:       "OctoCat",
			Email:          "Octo@Example.COM",
			Name:           "Octo Cat",
		},
		token: "provider-token",
	}

	flow := NewOAuthFlow(users, sessions, adapter, listener, redirectWithCode(listener, "auth-code"))

	resp := flow.Authenticate(context.Background())
	require.True(t, resp.Success)
	assert.True(t, resp.NewAccount)
	assert.NotEqual(t, uuid.Nil, resp.SessionID)
	assert.Equal(t, "provider-token", resp.AccessToken)
	assert.NotEmpty(t, adapter.lastState)

	user, err := users.GetUserByUsername(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octo@example.com", user.Email)
	assert.Equal(t, DefaultRole, user.Role)
	assert.Empty(t, user.PasswordHash)

	sess, err := sessions.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.True(t, sess.Active)
}

func TestOAuthFlow_Authenticate_ExistingAccount(t *testing.T) {
	t.Parallel()

	users := NewMemoryUserRepository()
	sessions := session.NewMemoryRepository()
	listener := startTestListener(t)
	adapter := &stubAdapter{
		profile: ProviderProfile{
			ProviderUserID: "42",
			Username:       "octocat",
			Email:          "fresh@example.com",
		},
	}

	existing := &User{
		ID:        uuid.New(),
		Username:  "octocat",
		Email:     "stale@example.com",
		Role:      DefaultRole,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, users.CreateUser(context.Background(), existing))

	flow := NewOAuthFlow(users, sessions, adapter, listener, redirectWithCode(listener, "auth-code"))

	resp := flow.Authenticate(context.Background())
	require.True(t, resp.Success)
	assert.False(t, resp.NewAccount)
	assert.Equal(t, 1, users.Count())

	user, err := users.GetUserByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", user.Email)

	sess, err := sessions.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sess.UserID)
}

func TestOAuthFlow_Authenticate_OpenURLFails(t *testing.T) {
	t.Parallel()

	users := NewMemoryUserRepository()
	sessions := session.NewMemoryRepository()
	listener := startTestListener(t)
	adapter := &stubAdapter{profile: ProviderProfile{ProviderUserID: "42", Username: "octocat"}}

	flow := NewOAuthFlow(users, sessions, adapter, listener,
		func(string) error { return errors.New("no browser available") })

	resp := flow.Authenticate(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, uuid.Nil, resp.SessionID)
	assert.Equal(t, 0, users.Count())
}

func TestOAuthFlow_Authenticate_ResolveFails_FreesAttemptSlot(t *testing.T) {
	t.Parallel()

	users := NewMemoryUserRepository()
	sessions := session.NewMemoryRepository()
	listener := startTestListener(t)
	adapter := &stubAdapter{resolveErr: ErrInvalidCode}

	flow := NewOAuthFlow(users, sessions, adapter, listener, redirectWithCode(listener, "expired"))

	resp := flow.Authenticate(context.Background())
	assert.False(t, resp.Success)

	adapter.resolveErr = nil
	adapter.profile = ProviderProfile{ProviderUserID: "42", Username: "octocat"}

	resp = flow.Authenticate(context.Background())
	assert.True(t, resp.Success)
}

func TestOAuthFlow_Authenticate_MissingUsername(t *testing.T) {
	t.Parallel()

	users := NewMemoryUserRepository()
	sessions := session.NewMemoryRepository()
	listener := startTestListener(t)
	adapter := &stubAdapter{profile: ProviderProfile{ProviderUserID: "42"}}

	flow := NewOAuthFlow(users, sessions, adapter, listener, redirectWithCode(listener, "auth-code"))

	resp := flow.Authenticate(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, 0, users.Count())
}

func TestOAuthFlow_Authenticate_WaitTimeout(t *testing.T) {
	t.Parallel()

	users := NewMemoryUserRepository()
	sessions := session.NewMemoryRepository()
	listener := startTestListener(t)
	adapter := &stubAdapter{profile: ProviderProfile{ProviderUserID: "42", Username: "octocat"}}

	flow := NewOAuthFlow(users, sessions, adapter, listener,
		func(string) error { return nil },
		WithFlowWaitTimeout(50*time.Millisecond))

	resp := flow.Authenticate(context.Background())
	assert.False(t, resp.Success)
}
