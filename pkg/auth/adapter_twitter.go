package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/authkit/pkg/loopback"
	"github.com/dmitrymomot/authkit/pkg/pkce"
)

// twitterEndpoint is the OAuth2 endpoint of the Twitter v2 API. Twitter
// requires PKCE for public clients, so no client secret is configured.
var twitterEndpoint = oauth2.Endpoint{
	AuthURL:   "https://twitter.com/i/oauth2/authorize",
	TokenURL:  "https://api.twitter.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// TwitterOAuthConfig holds configuration for the Twitter provider.
// Twitter is a PKCE public client: there is no client secret.
type TwitterOAuthConfig struct {
	ClientID    string        `env:"TWITTER_OAUTH_CLIENT_ID,required"`
	RedirectURL string        `env:"TWITTER_OAUTH_REDIRECT_URL,required"`
	Scopes      []string      `env:"TWITTER_OAUTH_SCOPES" envSeparator:"," envDefault:"tweet.read,users.read"`
	Timeout     time.Duration `env:"TWITTER_OAUTH_TIMEOUT" envDefault:"10s"`
}

type twitterAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBase    string

	// verifier is the single-slot PKCE verifier for the in-flight
	// attempt. AuthURL fills it, ResolveProfile consumes it; a second
	// exchange without a fresh AuthURL fails.
	mu       sync.Mutex
	verifier string
}

// NewTwitterAdapter creates the Twitter provider adapter.
func NewTwitterAdapter(cfg TwitterOAuthConfig, opts ...AdapterOption) (ProviderAdapter, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.RedirectURL == "" {
		return nil, ErrMissingRedirectURL
	}

	o := newAdapterOptions(opts)
	endpoint := twitterEndpoint
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}
	apiBase := "https://api.twitter.com"
	if o.apiBase != "" {
		apiBase = o.apiBase
	}

	return &twitterAdapter{
		conf: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
			Endpoint:    endpoint,
		},
		httpClient: o.httpClient,
		apiBase:    apiBase,
	}, nil
}

// ProviderID returns the Twitter provider identifier.
func (a *twitterAdapter) ProviderID() string {
	return ProviderTwitter
}

// AuthURL generates a fresh verifier/challenge pair and binds the S256
// challenge into the authorization URL. The verifier is stored for the
// matching exchange and replaced on every call, so each attempt gets
// its own single-use pair.
func (a *twitterAdapter) AuthURL(state string) (string, error) {
	verifier, challenge, err := pkce.GenerateVerifierAndChallenge()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.verifier = verifier
	a.mu.Unlock()

	return a.conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// ResolveProfile exchanges the code with the stored verifier instead of
// a client secret, then reads /2/users/me. Twitter does not return an
// email address.
func (a *twitterAdapter) ResolveProfile(ctx context.Context, cb loopback.Callback) (ProviderProfile, string, error) {
	if cb.Code == "" {
		return ProviderProfile{}, "", ErrMissingAuthCode
	}

	a.mu.Lock()
	verifier := a.verifier
	a.verifier = ""
	a.mu.Unlock()

	if verifier == "" {
		return ProviderProfile{}, "", ErrVerifierConsumed
	}

	tok, err := a.conf.Exchange(exchangeContext(ctx, a.httpClient), cb.Code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
	if err != nil {
		return ProviderProfile{}, "", ErrInvalidCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+"/2/users/me", nil)
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
		return ProviderProfile{}, "", fmt.Errorf("twitter api returned status %d", resp.StatusCode)
	}

	var me struct {
		Data struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return ProviderProfile{}, "", err
	}
	if me.Data.ID == "" {
		return ProviderProfile{}, "", ErrMissingProfileID
	}

	return ProviderProfile{
		ProviderUserID: me.Data.ID,
		Username:       me.Data.Username,
		Name:           me.Data.Name,
	}, tok.AccessToken, nil
}

var _ ProviderAdapter = (*twitterAdapter)(nil)
