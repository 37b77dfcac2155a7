// Package session defines the server-side session handle issued on
// successful authentication and the repository port used to persist it.
//
// A session is not a token: it carries no claims and cannot be verified
// offline. Whoever holds the id can present it for authorization checks
// until the session is explicitly ended. Two repository implementations
// ship with the package: an in-memory one for tests and single-process
// desktop hosts, and a Redis-backed one for server deployments.
//
// Session identity is threaded through context values (WithSession /
// FromContext) rather than process-global state, so multiple logins can
// coexist in one process.
package session
