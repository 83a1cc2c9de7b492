// seed loads master data and finished-goods purchases from a YAML file into
// the database. Existing rows with the same ids are updated.
//
// Usage: go run ./cmd/seed -file seed.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"purchase-ledger/internal/config"
	"purchase-ledger/internal/db"
	"purchase-ledger/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	file := flag.String("file", cfg.SeedFile, "seed YAML file (default SEED_FILE)")
	flag.Parse()
	if *file == "" {
		logger.Error("no seed file given; pass -file or set SEED_FILE")
		os.Exit(2)
	}

	seed, err := store.LoadSeedFile(*file)
	if err != nil {
		logger.Error("load seed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.SeedMasterData(ctx, pool, seed); err != nil {
		logger.Error("seed", slog.Any("error", err))
		pool.Close()
		os.Exit(1)
	}
	logger.Info("seed data restored",
		slog.String("file", *file),
		slog.Int("suppliers", len(seed.Suppliers)),
		slog.Int("agents", len(seed.FreightForwarders)+len(seed.ClearingAgents)+len(seed.CommissionAgents)),
		slog.Int("finished_goods_purchases", len(seed.FinishedGoodsPurchases)))
}
