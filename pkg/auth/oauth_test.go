package auth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapters_AuthURL_CarriesClientAndRedirect(t *testing.T) {
	t.Parallel()

	const redirect = "http://127.0.0.1:53682/auth"

	tests := []struct {
		name  string
		build func() (ProviderAdapter, error)
	}{
		{ProviderGithub, func() (ProviderAdapter, error) {
			return NewGitHubAdapter(GitHubOAuthConfig{ClientID: "cid", ClientSecret: "cs", RedirectURL: redirect})
		}},
		{ProviderFacebook, func() (ProviderAdapter, error) {
			return NewFacebookAdapter(FacebookOAuthConfig{ClientID: "cid", ClientSecret: "cs", RedirectURL: redirect})
		}},
		{ProviderLinkedin, func() (ProviderAdapter, error) {
			return NewLinkedInAdapter(LinkedInOAuthConfig{ClientID: "cid", ClientSecret: "cs", RedirectURL: redirect})
		}},
		{ProviderTwitter, func() (ProviderAdapter, error) {
			return NewTwitterAdapter(TwitterOAuthConfig{ClientID: "cid", RedirectURL: redirect})
		}},
		{ProviderGoogle, func() (ProviderAdapter, error) {
			return NewGoogleAdapter(GoogleOAuthConfig{ClientID: "cid", ClientSecret: "cs", RedirectURL: redirect})
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			adapter, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.name, adapter.ProviderID())

			raw, err := adapter.AuthURL("state-xyz")
			require.NoError(t, err)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			q := u.Query()
			assert.Equal(t, "cid", q.Get("client_id"))
			assert.Equal(t, redirect, q.Get("redirect_uri"))
			assert.Equal(t, "state-xyz", q.Get("state"))
		})
	}
}
