package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirper/errs"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, ttl), mr
}

func TestStoreCreateAndResolve(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.UserID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestStoreRotatesTokens(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	// Two logins for the same user never share a token.
	t1, err := store.Create(ctx, 7)
	require.NoError(t, err)
	t2, err := store.Create(ctx, 7)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestStoreUnknownToken(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.UserID(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.UserID(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStoreDestroyIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, token))
	// Destroying again, or destroying something that never existed, succeeds.
	require.NoError(t, store.Destroy(ctx, token))
	require.NoError(t, store.Destroy(ctx, "never-existed"))

	_, err = store.UserID(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)

	// A down redis must surface as a storage failure, never as anonymity.
	mr.Close()

	_, err = store.UserID(ctx, token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
	assert.Equal(t, errs.EUNAVAILABLE, errs.ErrorCode(err))

	_, err = store.Create(ctx, 43)
	require.Error(t, err)
	assert.Equal(t, errs.EUNAVAILABLE, errs.ErrorCode(err))
}
