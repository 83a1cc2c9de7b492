package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrAlreadyProcessed indicates the key was already claimed by an earlier request.
var ErrAlreadyProcessed = errors.New("idempotent request already processed")

const keyPrefix = "purchase-ledger:idem:"

// Guard records idempotency keys in Redis so a replayed save is rejected.
// A nil *Guard accepts every key.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a Guard that remembers keys for ttl.
func New(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{client: client, ttl: ttl}
}

// Connect dials addr and verifies the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("idempotency: ping: %w", err)
	}
	return client, nil
}

// Claim marks key as in use for scope. It returns ErrAlreadyProcessed when the
// key was claimed before and has not expired or been released.
func (g *Guard) Claim(ctx context.Context, scope, key string) error {
	if g == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	ok, err := g.client.SetNX(ctx, keyPrefix+scope+":"+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return fmt.Errorf("idempotency: claim: %w", err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}
	return nil
}

// Release forgets key, typically after the guarded operation failed.
func (g *Guard) Release(ctx context.Context, scope, key string) error {
	if g == nil || key == "" {
		return nil
	}
	if err := g.client.Del(ctx, keyPrefix+scope+":"+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}
