package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/dmitrymomot/authkit/pkg/loopback"
)

// GitHubOAuthConfig holds configuration for the GitHub provider.
type GitHubOAuthConfig struct {
	ClientID     string        `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
	Timeout      time.Duration `env:"GITHUB_OAUTH_TIMEOUT" envDefault:"10s"`
}

type githubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBase    string
}

// NewGitHubAdapter creates the GitHub provider adapter. Missing
// credentials are fatal here, never retried.
func NewGitHubAdapter(cfg GitHubOAuthConfig, opts ...AdapterOption) (ProviderAdapter, error) {
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
	endpoint := github.Endpoint
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}
	apiBase := "https://api.github.com"
	if o.apiBase != "" {
		apiBase = o.apiBase
	}

	return &githubAdapter{
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

// ProviderID returns the GitHub provider identifier.
func (a *githubAdapter) ProviderID() string {
	return ProviderGithub
}

// AuthURL builds the GitHub authorization URL with the given state.
func (a *githubAdapter) AuthURL(state string) (string, error) {
	return a.conf.AuthCodeURL(state), nil
}

// ResolveProfile exchanges the code, then reads /user and /user/emails.
// GitHub returns a list of addresses; only the entry explicitly marked
// primary is accepted.
func (a *githubAdapter) ResolveProfile(ctx context.Context, cb loopback.Callback) (ProviderProfile, string, error) {
	if cb.Code == "" {
		return ProviderProfile{}, "", ErrMissingAuthCode
	}

	tok, err := a.conf.Exchange(exchangeContext(ctx, a.httpClient), cb.Code)
	if err != nil {
		return ProviderProfile{}, "", ErrInvalidCode
	}

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := a.getJSON(ctx, tok.AccessToken, "/user", &user); err != nil {
		return ProviderProfile{}, "", fmt.Errorf("fetch github user: %w", err)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := a.getJSON(ctx, tok.AccessToken, "/user/emails", &emails); err != nil {
		return ProviderProfile{}, "", fmt.Errorf("fetch github emails: %w", err)
	}

	var email string
	for _, e := range emails {
		if e.Primary {
			email = e.Email
			break
		}
	}
	if email == "" {
		return ProviderProfile{}, "", ErrNoPrimaryEmail
	}

	return ProviderProfile{
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Username:       user.Login,
		Email:          email,
		Name:           user.Name,
	}, tok.AccessToken, nil
}

func (a *githubAdapter) getJSON(ctx context.Context, accessToken, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

var _ ProviderAdapter = (*githubAdapter)(nil)
