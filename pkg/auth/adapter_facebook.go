package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/dmitrymomot/authkit/pkg/loopback"
)

// FacebookOAuthConfig holds configuration for the Facebook provider.
type FacebookOAuthConfig struct {
	ClientID     string        `env:"FACEBOOK_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"FACEBOOK_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"FACEBOOK_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"FACEBOOK_OAUTH_SCOPES" envSeparator:"," envDefault:"email,public_profile"`
	Timeout      time.Duration `env:"FACEBOOK_OAUTH_TIMEOUT" envDefault:"10s"`
}

type facebookAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBase    string
}

// NewFacebookAdapter creates the Facebook provider adapter.
func NewFacebookAdapter(cfg FacebookOAuthConfig, opts ...AdapterOption) (ProviderAdapter, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}
	if cfg.RedirectURL == "" {
		return nil, ErrMissingRedirectURL
	}

	o := newAdapterOptions(opts)
	endpoint := facebook.Endpoint
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}
	apiBase := "https://graph.facebook.com"
	if o.apiBase != "" {
		apiBase = o.apiBase
	}

	return &facebookAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		httpClient: o.httpClient,
		apiBase:    apiBase,
	}, nil
}

// ProviderID returns the Facebook provider identifier.
func (a *facebookAdapter) ProviderID() string {
	return ProviderFacebook
}

// AuthURL builds the Facebook authorization URL with the given state.
func (a *facebookAdapter) AuthURL(state string) (string, error) {
	return a.conf.AuthCodeURL(state), nil
}

// ResolveProfile accepts either delivery path: an implicit-flow token is
// used directly, a code is exchanged first. The Graph API has no
// username concept, so the display name doubles as the resolution key.
func (a *facebookAdapter) ResolveProfile(ctx context.Context, cb loopback.Callback) (ProviderProfile, string, error) {
	accessToken := cb.AccessToken
	if accessToken == "" {
		if cb.Code == "" {
			return ProviderProfile{}, "", ErrMissingAuthCode
		}
		tok, err := a.conf.Exchange(exchangeContext(ctx, a.httpClient), cb.Code)
		if err != nil {
			return ProviderProfile{}, "", ErrInvalidCode
		}
		accessToken = tok.AccessToken
	}

	endpoint := fmt.Sprintf("%s/me?fields=id,name,email&access_token=%s",
		a.apiBase, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ProviderProfile{}, "", err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return ProviderProfile{}, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ProviderProfile{}, "", fmt.Errorf("facebook api returned status %d", resp.StatusCode)
	}

	var me struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return ProviderProfile{}, "", err
	}
	if me.ID == "" {
		return ProviderProfile{}, "", ErrMissingProfileID
	}

	return ProviderProfile{
		ProviderUserID: me.ID,
		Username:       me.Name,
		Email:          me.Email,
		Name:           me.Name,
	}, accessToken, nil
}

var _ ProviderAdapter = (*facebookAdapter)(nil)
