// Package pkce implements the Proof Key for Code Exchange (RFC 7636)
// verifier/challenge pair and cryptographically secure key generation
// used by public OAuth clients and the two-factor secret provisioning.
//
// The package is stateless: every call draws fresh material from
// crypto/rand and returns an error if the secure source fails. There is
// deliberately no fallback to a weaker random source — callers must
// abort the login attempt on error.
package pkce
