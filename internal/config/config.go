// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all configuration values for the API server and slugctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required unless
	// StoreDriver is "memory".
	DatabaseURL string `env:"DATABASE_URL"`

	// StoreDriver selects the record store: postgres or memory.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// JWTSecret signs and verifies principal tokens (HS256). Required.
	JWTSecret string `env:"JWT_SECRET,notEmpty"`

	// SlugMaxAttempts bounds how many candidates ResolveUnique checks.
	SlugMaxAttempts int `env:"SLUG_MAX_ATTEMPTS" envDefault:"10000"`

	// SlugWriteRetries is how many times a lost slug write is re-resolved.
	SlugWriteRetries int `env:"SLUG_WRITE_RETRIES" envDefault:"3"`

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// BackfillBatchSize is how many records a backfill lists per query.
	BackfillBatchSize int `env:"BACKFILL_BATCH_SIZE" envDefault:"500"`
}

// Load reads an optional .env file, then configuration from environment
// variables. Variables already set in the environment win over .env.
// Returns an error naming every variable that is missing or invalid.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver))
	}
	if c.SlugMaxAttempts < 1 {
		errs = append(errs, errors.New("SLUG_MAX_ATTEMPTS must be at least 1"))
	}
	if c.SlugWriteRetries < 0 {
		errs = append(errs, errors.New("SLUG_WRITE_RETRIES must not be negative"))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be at least 1"))
	}
	if c.BackfillBatchSize < 1 {
		errs = append(errs, errors.New("BACKFILL_BATCH_SIZE must be at least 1"))
	}
	return errors.Join(errs...)
}

// trimAll trims each entry and drops the empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
