package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/authkit/pkg/loopback"
)

// ProviderAdapter translates one identity provider's protocol into the
// core's normalized profile. ResolveProfile also returns the provider
// access token so the flow can carry it in the audit field of the
// response.
type ProviderAdapter interface {
	// ProviderID returns the provider identifier (ProviderGithub, ...)
	ProviderID() string

	// AuthURL builds the authorization URL with the given state value.
	// No network call is made.
	AuthURL(state string) (string, error)

	// ResolveProfile exchanges the callback credential for an access
	// token (skipped when the token arrived directly via implicit flow)
	// and fetches the provider's profile.
	ResolveProfile(ctx context.Context, cb loopback.Callback) (ProviderProfile, string, error)
}

// adapterOptions collects the knobs shared by all provider adapters.
type adapterOptions struct {
	httpClient *http.Client
	endpoint   *oauth2.Endpoint
	apiBase    string
}

// AdapterOption configures a provider adapter during construction.
type AdapterOption func(*adapterOptions)

// WithAdapterHTTPClient injects the HTTP client used for token exchange
// and profile fetches.
func WithAdapterHTTPClient(c *http.Client) AdapterOption {
	return func(o *adapterOptions) {
		o.httpClient = c
	}
}

// WithAdapterEndpoint overrides the provider's OAuth endpoint.
func WithAdapterEndpoint(e oauth2.Endpoint) AdapterOption {
	return func(o *adapterOptions) {
		o.endpoint = &e
	}
}

// WithAdapterAPIBase overrides the base URL of the provider's API,
// used by tests to point profile fetches at a local server.
func WithAdapterAPIBase(base string) AdapterOption {
	return func(o *adapterOptions) {
		o.apiBase = base
	}
}

func newAdapterOptions(opts []AdapterOption) adapterOptions {
	o := adapterOptions{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// exchangeContext binds the adapter's HTTP client to the oauth2 token
// exchange so injected transports also cover the exchange call.
func exchangeContext(ctx context.Context, c *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c)
}
