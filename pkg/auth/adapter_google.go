package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/dmitrymomot/authkit/pkg/loopback"
)

// GoogleOAuthConfig holds configuration for the Google provider.
type GoogleOAuthConfig struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
	Timeout      time.Duration `env:"GOOGLE_OAUTH_TIMEOUT" envDefault:"10s"`
}

type googleAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBase    string
}

// NewGoogleAdapter creates the Google provider adapter.
func NewGoogleAdapter(cfg GoogleOAuthConfig, opts ...AdapterOption) (ProviderAdapter, error) {
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
	endpoint := endpoints.Google
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}
	apiBase := "https://openidconnect.googleapis.com"
	if o.apiBase != "" {
		apiBase = o.apiBase
	}

	return &googleAdapter{
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

// ProviderID returns the Google provider identifier.
func (a *googleAdapter) ProviderID() string {
	return ProviderGoogle
}

// AuthURL builds the Google authorization URL with the given state.
func (a *googleAdapter) AuthURL(state string) (string, error) {
	return a.conf.AuthCodeURL(state), nil
}

// ResolveProfile exchanges the code and reads the OIDC userinfo
// endpoint.
func (a *googleAdapter) ResolveProfile(ctx context.Context, cb loopback.Callback) (ProviderProfile, string, error) {
	if cb.Code == "" {
		return ProviderProfile{}, "", ErrMissingAuthCode
	}

	tok, err := a.conf.Exchange(exchangeContext(ctx, a.httpClient), cb.Code)
	if err != nil {
		return ProviderProfile{}, "", ErrInvalidCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+"/v1/userinfo", nil)
	if err != nil {
		return ProviderProfile{}, "", err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return ProviderProfile{}, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ProviderProfile{}, "", fmt.Errorf("google api returned status %d", resp.StatusCode)
	}

	var info struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ProviderProfile{}, "", err
	}
	if info.Sub == "" {
		return ProviderProfile{}, "", ErrMissingProfileID
	}

	return ProviderProfile{
		ProviderUserID: info.Sub,
		Username:       info.Name,
		Email:          info.Email,
		Name:           info.Name,
	}, tok.AccessToken, nil
}

var _ ProviderAdapter = (*googleAdapter)(nil)
