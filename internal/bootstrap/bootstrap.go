// Package bootstrap builds the application service from configuration. It is
// shared by the server and the command-line tool.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/config"
	"purchase-ledger/internal/core"
	"purchase-ledger/internal/db"
	"purchase-ledger/internal/idempotency"
	"purchase-ledger/internal/store"
)

// Runtime is a wired application service plus the resources it holds.
type Runtime struct {
	Service app.ApplicationService
	closers []func()
}

// Close releases the database pool and Redis client, in reverse order of opening.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Open selects the store named by cfg.StoreDriver, the matching account rule
// engine, and the optional Redis idempotency guard.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	var (
		st    core.Store
		rules core.RuleEngine
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		st = store.NewPostgres(pool)
		rules = core.NewPostgresRuleEngine(pool)
		logger.Info("using postgres store")
	case config.StoreMemory:
		seed, err := loadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		st = store.NewMemory(seed)
		rules = core.NewStaticRuleEngine(cfg.Accounts.Map())
		logger.Info("using in-memory store", "seed_file", cfg.SeedFile,
			"suppliers", len(seed.Suppliers), "finished_goods", len(seed.FinishedGoodsPurchases))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	var guard *idempotency.Guard
	if cfg.RedisAddr != "" {
		client, err := idempotency.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		guard = idempotency.New(client, cfg.IdempotencyTTL)
		logger.Info("idempotency guard enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.IdempotencyTTL)
	}

	purchases := core.NewPurchaseService(st, rules, nil, core.WithLogger(logger))
	rt.Service = app.NewAppService(purchases, guard, logger)
	return rt, nil
}

func loadSeed(path string) (store.Seed, error) {
	if path == "" {
		return store.Seed{}, nil
	}
	seed, err := store.LoadSeedFile(path)
	if err != nil {
		return store.Seed{}, fmt.Errorf("seed: %w", err)
	}
	return seed, nil
}
