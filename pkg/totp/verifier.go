package totp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/qrcode"
)

// SecretStore is the persistence port the verifier needs to provision a
// two-factor secret on a user record.
type SecretStore interface {
	UpdateTwoFactorSecret(ctx context.Context, userID uuid.UUID, secret string) error
}

// Challenge is handed to the caller during first-time enrollment. It
// exists only for the duration of one login.
type Challenge struct {
	Secret string // Base32-encoded secret, already persisted
	URI    string // otpauth:// provisioning URI
	QRCode []byte // PNG rendering of the URI for client display
}

// Verifier drives two-factor enrollment and recurring verification.
type Verifier struct {
	store  SecretStore
	issuer string
	qrSize int
	logger *slog.Logger
}

// VerifierOption configures a Verifier during construction.
type VerifierOption func(*Verifier)

// WithVerifierLogger sets a custom logger for the verifier.
func WithVerifierLogger(l *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = l
	}
}

// WithQRSize sets the pixel size of the enrollment QR code.
func WithQRSize(size int) VerifierOption {
	return func(v *Verifier) {
		v.qrSize = size
	}
}

// NewVerifier creates a two-factor verifier. The issuer is the label
// shown in authenticator apps next to the account name.
func NewVerifier(store SecretStore, issuer string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		store:  store,
		issuer: issuer,
		qrSize: 256,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Setup provisions a fresh secret for the user: generate, persist, then
// build the enrollment challenge. Persistence failure fails the whole
// setup, since a login gated on an unpersisted secret could never be
// verified again.
func (v *Verifier) Setup(ctx context.Context, userID uuid.UUID, accountName string) (*Challenge, error) {
	secret, err := GenerateSecretKey()
	if err != nil {
		return nil, err
	}

	if err := v.store.UpdateTwoFactorSecret(ctx, userID, secret); err != nil {
		v.logger.Error("two-factor secret not persisted",
			logger.UserID(userID.String()),
			logger.Error(err),
			logger.Component("totp"),
		)
		return nil, errors.Join(ErrSecretNotPersisted, err)
	}

	uri, err := ProvisioningURI(URIParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      v.issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build provisioning uri: %w", err)
	}

	png, err := qrcode.Render(uri, v.qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render enrollment qr code: %w", err)
	}

	return &Challenge{Secret: secret, URI: uri, QRCode: png}, nil
}

// Verify checks a submitted 6-digit code against the stored secret for
// the current time window.
func (v *Verifier) Verify(secret, code string) (bool, error) {
	return ValidateTOTP(secret, code)
}
