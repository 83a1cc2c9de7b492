package config

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"purchase-ledger/internal/core"
)

// unsetenv removes keys for the duration of the test so defaults apply.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "STORE_DRIVER", "DATABASE_URL", "HTTP_ADDR", "IDEMPOTENCY_TTL", "APP_ENV",
		"ACCOUNT_ORIGINAL_PURCHASE", "ACCOUNT_PAYABLE", "ACCOUNT_FREIGHT", "ACCOUNT_CLEARING", "ACCOUNT_COMMISSION")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.StoreDriver)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, core.DefaultAccounts(), cfg.Accounts.Map())
	require.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/purchases")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ACCOUNT_FREIGHT", "EXP-105")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorePostgres, cfg.StoreDriver)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, "EXP-105", cfg.Accounts.Map().Freight)
	require.True(t, cfg.IsProduction())
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORE_DRIVER", "sqlite")
	_, err = Load()
	require.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "purchase_id", "OP-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["msg"])
	require.Equal(t, "OP-1", line["purchase_id"])
}
