package loopback

import (
	"net/url"
	"strings"
)

// Callback carries the credential extracted from a provider redirect.
// Exactly one of Code or AccessToken is set: Code for authorization-code
// delivery, AccessToken when an implicit-flow token arrived directly.
type Callback struct {
	Code        string
	AccessToken string
}

// parseCallbackPayload extracts a code or token from the raw body posted
// by the fragment-forwarding page. Accepted shapes are a URL fragment
// ("#access_token=...&token_type=..." or "code=..."), with or without
// the leading hash, or a bare authorization code.
func parseCallbackPayload(body string) (Callback, error) {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "#")
	if body == "" {
		return Callback{}, ErrEmptyPayload
	}

	if strings.ContainsAny(body, "=&") {
		vals, err := url.ParseQuery(body)
		if err != nil {
			return Callback{}, ErrMalformedPayload
		}
		if tok := vals.Get("access_token"); tok != "" {
			return Callback{AccessToken: tok}, nil
		}
		if code := vals.Get("code"); code != "" {
			return Callback{Code: code}, nil
		}
		return Callback{}, ErrMalformedPayload
	}

	return Callback{Code: body}, nil
}
