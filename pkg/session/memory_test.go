package session_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/session"
)

func TestMemoryRepositoryCreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := session.NewMemoryRepository()
	userID := uuid.New()

	s, err := repo.CreateSession(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, userID, s.UserID)
	assert.True(t, s.Active)

	got, err := repo.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.True(t, got.IsActive())
}

func TestMemoryRepositoryEndSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := session.NewMemoryRepository()

	s, err := repo.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.EndSession(ctx, s.ID))

	got, err := repo.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())
}

func TestMemoryRepositoryEndSessionTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := session.NewMemoryRepository()

	s, err := repo.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.EndSession(ctx, s.ID))
	assert.ErrorIs(t, repo.EndSession(ctx, s.ID), session.ErrSessionEnded)
}

func TestMemoryRepositoryEndSessionNotFound(t *testing.T) {
	t.Parallel()
	repo := session.NewMemoryRepository()
	err := repo.EndSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryRepositoryGetByUserID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := session.NewMemoryRepository()
	userID := uuid.New()

	_, err := repo.CreateSession(ctx, userID)
	require.NoError(t, err)
	second, err := repo.CreateSession(ctx, userID)
	require.NoError(t, err)

	got, err := repo.GetSessionByUserID(ctx, userID)
	require.NoError(t, err)
	// The most recent session wins; with equal timestamps either is valid,
	// so only assert ownership and activity.
	assert.Equal(t, userID, got.UserID)
	assert.True(t, got.IsActive())

	_, err = repo.GetSessionByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_ = second
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	_, ok := session.FromContext(context.Background())
	assert.False(t, ok)

	s := session.NewSession(uuid.New())
	ctx := session.WithSession(context.Background(), s)

	got, ok := session.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	uid, ok := session.UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, s.UserID, uid)

	s.Active = false
	_, ok = session.UserIDFromContext(ctx)
	assert.False(t, ok)
}
