package gormstore_test

import (
	"context"
	"testing"
	"time"

	"campusbite/backend"
	"campusbite/internal/apptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	store := apptest.NewStore(t)
	auth := store.NewAuth()
	ctx := context.Background()

	acc, err := auth.CreateAccount(ctx, "Abebe@Campus.edu", "password123", "abebe")
	require.NoError(t, err)
	assert.Equal(t, "abebe@campus.edu", acc.Email)
	assert.NotEmpty(t, acc.ID)

	_, err = auth.CreateAccount(ctx, "abebe@campus.edu", "password456", "other")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrConflict)
}

func TestCreateAccountValidatesInput(t *testing.T) {
	auth := apptest.NewStore(t).NewAuth()
	ctx := context.Background()

	_, err := auth.CreateAccount(ctx, "not-an-email", "password123", "x")
	assert.Error(t, err)
	_, err = auth.CreateAccount(ctx, "x@campus.edu", "short", "x")
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	store := apptest.NewStore(t)
	auth := store.NewAuth()
	ctx := context.Background()

	acc, err := auth.CreateAccount(ctx, "chala@campus.edu", "password123", "chala")
	require.NoError(t, err)

	_, err = auth.CurrentSession(ctx)
	assert.True(t, backend.IsUnauthorized(err))

	sess, err := auth.CreateSession(ctx, "chala@campus.edu", "password123")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, sess.UserID)
	assert.True(t, sess.Current)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	cur, err := auth.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, cur.ID)

	// A second login while the session is live is refused.
	_, err = auth.CreateSession(ctx, "chala@campus.edu", "password123")
	assert.True(t, backend.IsSessionActive(err))

	// Another handle can look the session up but does not hold it.
	other := store.NewAuth()
	got, err := other.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.Current)
	_, err = other.CurrentSession(ctx)
	assert.True(t, backend.IsUnauthorized(err))

	require.NoError(t, auth.DeleteSession(ctx, backend.CurrentSessionID))
	_, err = auth.CurrentSession(ctx)
	assert.True(t, backend.IsUnauthorized(err))
	_, err = other.GetSession(ctx, sess.ID)
	assert.True(t, backend.IsUnauthorized(err))
}

func TestCreateSessionWrongPassword(t *testing.T) {
	auth := apptest.NewStore(t).NewAuth()
	ctx := context.Background()
	_, err := auth.CreateAccount(ctx, "dawit@campus.edu", "password123", "dawit")
	require.NoError(t, err)

	_, err = auth.CreateSession(ctx, "dawit@campus.edu", "wrong-password")
	assert.True(t, backend.IsUnauthorized(err))
	_, err = auth.CreateSession(ctx, "nobody@campus.edu", "password123")
	assert.True(t, backend.IsUnauthorized(err))
}

func TestGetSessionRejectsForeignToken(t *testing.T) {
	auth := apptest.NewStore(t).NewAuth()
	_, err := auth.GetSession(context.Background(), "eyJhbGciOiJIUzI1NiJ9.e30.invalid")
	assert.True(t, backend.IsUnauthorized(err))
}

func TestCreateSessionRateLimited(t *testing.T) {
	store := apptest.NewStore(t, apptest.WithLoginLimit(2, time.Hour))
	ctx := context.Background()
	_, err := store.NewAuth().CreateAccount(ctx, "eden@campus.edu", "password123", "eden")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := store.NewAuth().CreateSession(ctx, "eden@campus.edu", "password123")
		require.NoError(t, err)
	}
	_, err = store.NewAuth().CreateSession(ctx, "eden@campus.edu", "password123")
	assert.True(t, backend.IsRateLimited(err))
}

func TestUpdateNameRequiresSession(t *testing.T) {
	store := apptest.NewStore(t)
	auth := store.NewAuth()
	ctx := context.Background()

	assert.True(t, backend.IsUnauthorized(auth.UpdateName(ctx, "new")))

	_, err := auth.CreateAccount(ctx, "feven@campus.edu", "password123", "feven")
	require.NoError(t, err)
	_, err = auth.CreateSession(ctx, "feven@campus.edu", "password123")
	require.NoError(t, err)
	assert.NoError(t, auth.UpdateName(ctx, "Feven T."))
}
