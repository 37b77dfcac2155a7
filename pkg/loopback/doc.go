// Package loopback hosts the local HTTP endpoint an identity provider
// redirects the user's browser to after consent. One listener serves one
// provider on a fixed address and stays up across login attempts.
//
// Two delivery paths are supported. Authorization codes arrive in the
// query string of GET /auth and are delivered directly. Implicit-flow
// tokens arrive in the URL fragment, which the server never sees: /auth
// serves a small page whose script forwards window.location.hash to
// POST /exchange, where the token is parsed out of the raw body.
//
// A login attempt registers interest with Begin, which returns a
// single-slot Attempt resolved exactly once by the first valid callback.
// Only one attempt per listener may be pending; a second Begin is
// rejected with ErrAttemptPending rather than silently replacing the
// first. Malformed callback payloads answer 400 and never stop the
// accept loop.
package loopback
