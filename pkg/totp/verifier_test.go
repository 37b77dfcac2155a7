package totp_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/totp"
)

type mockSecretStore struct {
	mock.Mock
}

func (m *mockSecretStore) UpdateTwoFactorSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	args := m.Called(ctx, userID, secret)
	return args.Error(0)
}

func TestVerifierSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockSecretStore)
	store.On("UpdateTwoFactorSecret", ctx, userID, mock.AnythingOfType("string")).Return(nil)

	v := totp.NewVerifier(store, "authkit")
	challenge, err := v.Setup(ctx, userID, "alice")
	require.NoError(t, err)

	assert.NotEmpty(t, challenge.Secret)
	assert.True(t, strings.HasPrefix(challenge.URI, "otpauth://totp/authkit:alice?"))
	assert.Contains(t, challenge.URI, "secret="+challenge.Secret)
	assert.NotEmpty(t, challenge.QRCode)

	// The persisted secret and the challenge secret must be the same one
	store.AssertCalled(t, "UpdateTwoFactorSecret", ctx, userID, challenge.Secret)

	code, err := totp.GenerateTOTP(challenge.Secret)
	require.NoError(t, err)
	ok, err := v.Verify(challenge.Secret, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifierSetupPersistFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockSecretStore)
	store.On("UpdateTwoFactorSecret", ctx, userID, mock.AnythingOfType("string")).
		Return(errors.New("db down"))

	v := totp.NewVerifier(store, "authkit")
	challenge, err := v.Setup(ctx, userID, "alice")
	assert.ErrorIs(t, err, totp.ErrSecretNotPersisted)
	assert.Nil(t, challenge)
}
