package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"purchase-ledger/internal/idempotency"
)

func newGuard(t *testing.T) (*idempotency.Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return idempotency.New(client, time.Hour), mr
}

func TestGuard_ClaimOnce(t *testing.T) {
	g, _ := newGuard(t)
	ctx := context.Background()

	require.NoError(t, g.Claim(ctx, "save", "key-1"))
	require.ErrorIs(t, g.Claim(ctx, "save", "key-1"), idempotency.ErrAlreadyProcessed)
	require.NoError(t, g.Claim(ctx, "reverse", "key-1"))
	require.Error(t, g.Claim(ctx, "save", ""))
}

func TestGuard_ReleaseAndExpiry(t *testing.T) {
	g, mr := newGuard(t)
	ctx := context.Background()

	require.NoError(t, g.Claim(ctx, "save", "key-1"))
	require.NoError(t, g.Release(ctx, "save", "key-1"))
	require.NoError(t, g.Claim(ctx, "save", "key-1"))

	mr.FastForward(2 * time.Hour)
	require.NoError(t, g.Claim(ctx, "save", "key-1"))
}

func TestGuard_Nil(t *testing.T) {
	var g *idempotency.Guard
	require.NoError(t, g.Claim(context.Background(), "save", "key-1"))
	require.NoError(t, g.Release(context.Background(), "save", "key-1"))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := idempotency.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = idempotency.Connect(context.Background(), mr.Addr())
	require.Error(t, err)
}
