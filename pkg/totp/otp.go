package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/authkit/pkg/pkce"
)

const (
	DefaultDigits    = 6      // Standard 6-digit codes
	DefaultPeriod    = 30     // 30-second validity window (RFC 6238)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 (RFC 6238)

	secretLength = 20 // 160-bit secret (RFC 4226 recommendation)
)

// skewSteps is the number of 30-second steps accepted on either side of
// the current window. A code from ten steps away must fail.
const skewSteps = 1

var (
	// secretKeyRegex enforces Base32: uppercase A-Z, digits 2-7, optional padding
	secretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))
)

// URIParams carries the fields of an otpauth:// provisioning URI.
type URIParams struct {
	Secret      string // Base32-encoded secret key (required)
	AccountName string // User identifier such as the username (required)
	Issuer      string // Service label shown in authenticator apps (required)
	Algorithm   string // Defaults to SHA1
	Digits      int    // Defaults to 6
	Period      int    // Defaults to 30
}

// Validate ensures required URI parameters are present and well-formed.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !secretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

func (p URIParams) withDefaults() URIParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GenerateSecretKey generates a new Base32-encoded TOTP secret key.
func GenerateSecretKey() (string, error) {
	secret, err := pkce.GenerateRandomKey(secretLength)
	if err != nil {
		return "", errors.Join(ErrSecretGeneration, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// ProvisioningURI builds an otpauth:// URI following the Key Uri Format
// convention used by authenticator apps:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	params = params.withDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// ValidateTOTP checks a submitted code against the secret for the
// current time window, accepting one step of clock skew either way.
func ValidateTOTP(secret, code string) (bool, error) {
	return ValidateTOTPAt(secret, code, time.Now())
}

// ValidateTOTPAt checks a submitted code against the window containing t.
func ValidateTOTPAt(secret, code string, t time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCode
	}

	counter := t.Unix() / int64(DefaultPeriod)
	for i := -skewSteps; i <= skewSteps; i++ {
		candidate := generateHOTP(key, counter+int64(i), DefaultDigits)
		if fmt.Sprintf("%06d", candidate) == code {
			return true, nil
		}
	}

	return false, nil
}

// GenerateTOTP generates the code for the current 30-second window.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPAt(secret, time.Now())
}

// GenerateTOTPAt generates the code for the window containing t.
func GenerateTOTPAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := t.Unix() / int64(DefaultPeriod)
	return fmt.Sprintf("%06d", generateHOTP(key, counter, DefaultDigits)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// generateHOTP implements the RFC 4226 HMAC-based one-time password
// algorithm: the counter is hashed with HMAC-SHA1 and dynamically
// truncated to the requested number of digits.
func generateHOTP(key []byte, counter int64, digits int) int {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation: last 4 bits select the offset, MSB is cleared
	// to keep the value positive.
	offset := hash[len(hash)-1] & 0x0f
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}
