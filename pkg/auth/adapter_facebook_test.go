package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/loopback"
)

func newFacebookTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fb-token", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"98765","name":"Fran Example","email":"fran@example.com"}`))
	})
	return httptest.NewServer(mux)
}

// The implicit flow hands the adapter a ready access token; no code
// exchange must happen.
func TestFacebookAdapter_ResolveProfile_ImplicitToken(t *testing.T) {
	t.Parallel()

	srv := newFacebookTestServer(t)
	defer srv.Close()

	adapter, err := NewFacebookAdapter(FacebookOAuthConfig{
		ClientID:     "cid",
		ClientSecret: "cs",
		RedirectURL:  "http://127.0.0.1:53682/auth",
	},
		WithAdapterAPIBase(srv.URL),
		WithAdapterHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	profile, token, err := adapter.ResolveProfile(context.Background(), loopback.Callback{AccessToken: "fb-token"})
	require.NoError(t, err)
	assert.Equal(t, "fb-token", token)
	assert.Equal(t, "98765", profile.ProviderUserID)
	assert.Equal(t, "Fran Example", profile.Username)
	assert.Equal(t, "fran@example.com", profile.Email)
}

func TestFacebookAdapter_ResolveProfile_NoCredential(t *testing.T) {
	t.Parallel()

	adapter, err := NewFacebookAdapter(FacebookOAuthConfig{
		ClientID:     "cid",
		ClientSecret: "cs",
		RedirectURL:  "http://127.0.0.1:53682/auth",
	})
	require.NoError(t, err)

	_, _, err = adapter.ResolveProfile(context.Background(), loopback.Callback{})
	require.ErrorIs(t, err, ErrMissingAuthCode)
}
