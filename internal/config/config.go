package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"purchase-ledger/internal/core"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds runtime configuration, read from the environment and an optional .env file.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SeedFile    string `envconfig:"SEED_FILE"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	JWTSecret          string   `envconfig:"JWT_SECRET"`
	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	Accounts Accounts `envconfig:"ACCOUNT"`
}

// Accounts overrides the chart-of-accounts codes when no account_rules table
// is used. Variables are prefixed ACCOUNT_, e.g. ACCOUNT_FREIGHT.
type Accounts struct {
	OriginalPurchase string `envconfig:"ORIGINAL_PURCHASE" default:"EXP-004"`
	Payable          string `envconfig:"PAYABLE" default:"AP-001"`
	Freight          string `envconfig:"FREIGHT" default:"EXP-005"`
	Clearing         string `envconfig:"CLEARING" default:"EXP-006"`
	Commission       string `envconfig:"COMMISSION" default:"EXP-008"`
}

// Map converts the configured codes to a core.AccountMap.
func (a Accounts) Map() core.AccountMap {
	return core.AccountMap{
		OriginalPurchase: a.OriginalPurchase,
		Payable:          a.Payable,
		Freight:          a.Freight,
		Clearing:         a.Clearing,
		Commission:       a.Commission,
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want memory or postgres)", c.StoreDriver)
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("config: RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
