// migrate applies the SQL files in migrations/ in version order, recording a
// checksum for each so an edited migration is refused.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"purchase-ledger/internal/config"
	"purchase-ledger/internal/db"
)

const (
	migrationsDir = "migrations"
	migrateLockID = 7462839
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	if err := run(context.Background(), cfg.DatabaseURL, logger); err != nil {
		logger.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("all migrations processed")
}

func run(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire lock connection: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrateLockID).Scan(&locked); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	if !locked {
		return errors.New("another migrator is currently running")
	}
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrateLockID)

	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := discoverMigrations(migrationsDir)
	if err != nil {
		return err
	}
	for _, filename := range files {
		if err := applyMigration(ctx, pool, filename, logger); err != nil {
			return err
		}
	}
	return nil
}

func discoverMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var filenames []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := extractVersion(entry.Name())
		if err != nil {
			return nil, err
		}
		if seen[version] {
			return nil, fmt.Errorf("duplicate migration version %s", version)
		}
		seen[version] = true
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	return filenames, nil
}

func extractVersion(filename string) (string, error) {
	version, _, ok := strings.Cut(filename, "_")
	if !ok {
		return "", fmt.Errorf("invalid migration filename %s, expected NNN_description.sql", filename)
	}
	return version, nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string, logger *slog.Logger) error {
	version, err := extractVersion(filename)
	if err != nil {
		return err
	}
	sqlBytes, err := os.ReadFile(filepath.Join(migrationsDir, filename))
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	sum := sha256.Sum256(sqlBytes)
	checksum := hex.EncodeToString(sum[:])

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("checksum mismatch for %s: recorded %s, file %s", filename, existing, checksum)
		}
		logger.Info("skip migration", slog.String("file", filename))
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("query schema_migrations for %s: %w", filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("execute %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum); err != nil {
		return fmt.Errorf("record %s: %w", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", filename, err)
	}

	logger.Info("applied migration", slog.String("file", filename))
	return nil
}
