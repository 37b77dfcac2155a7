// Package auth turns an external identity assertion (a password, an
// OAuth provider code or token, or a time-based one-time code) into a
// validated, revocable local session.
//
// The package is built from three layers:
//
//   - Provider adapters translate one identity provider's protocol
//     (GitHub, Facebook, LinkedIn, Twitter with PKCE, Google) into a
//     normalized ProviderProfile. Adapters are constructed from typed
//     configs and fail fast on missing credentials.
//   - OAuthFlow drives one complete login: register a pending attempt on
//     the loopback listener, open the authorization URL, wait for the
//     callback, exchange the code, fetch the profile, resolve the local
//     user, and issue a session. Its public Authenticate never leaks a
//     raw transport error; every failure collapses to a failed
//     AuthenticationResponse.
//   - Orchestrator is the single entry surface for callers. It selects
//     password or provider flows, applies the auto-provisioning policy,
//     gates session completion behind two-factor verification, and
//     tracks an optional current-session pointer for single-user
//     desktop hosts.
//
// Storage is abstracted behind the UserRepository port and the session
// repository from pkg/session; a MemoryUserRepository ships with the
// package for tests and desktop use.
package auth
