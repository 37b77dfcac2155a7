package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// verifierLength is 32 random bytes, which encode to a 43-character
// verifier — the RFC 7636 minimum.
const verifierLength = 32

// GenerateVerifierAndChallenge produces a fresh PKCE verifier and its S256
// challenge. The verifier is 32 cryptographically random bytes encoded as
// unpadded base64url; the challenge is the unpadded base64url SHA-256
// digest of the verifier string.
func GenerateVerifierAndChallenge() (verifier, challenge string, err error) {
	b, err := GenerateRandomKey(verifierLength)
	if err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)
	return verifier, ChallengeFromVerifier(verifier), nil
}

// ChallengeFromVerifier derives the S256 code challenge for an existing verifier.
func ChallengeFromVerifier(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateRandomKey returns length cryptographically random bytes,
// suitable for two-factor secrets and state tokens.
func GenerateRandomKey(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrInvalidKeyLength
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Join(ErrRandomSourceFailure, err)
	}
	return b, nil
}
