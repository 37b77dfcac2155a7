// Package totp implements time-based one-time passwords (RFC 6238) and
// the two-factor verification step of the login flow.
//
// The low-level functions (GenerateSecretKey, GenerateTOTP, ValidateTOTP,
// ProvisioningURI) are pure and stateless. The Verifier service wraps
// them with the enrollment policy: a freshly generated secret is
// persisted through the SecretStore port before the challenge is handed
// to the caller, because a login gated on an unpersisted secret would be
// unverifiable on the next attempt.
//
// Validation tolerates one 30-second step of clock skew in either
// direction, per the RFC recommendation.
package totp
