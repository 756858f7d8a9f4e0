// Package bootstrap builds the dependencies shared by the API server and
// slugctl: logger, record store, migrations and services. No business logic
// belongs here.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Condfire/petadot/internal/config"
	"github.com/Condfire/petadot/internal/repo"
	"github.com/Condfire/petadot/internal/service"
	"github.com/Condfire/petadot/migrations"
)

// NewLogger returns a JSON logger writing to w at the given level.
// An unknown level falls back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}

// Store is an open record store. Pool is nil for the in-memory driver.
type Store struct {
	Records repo.RecordRepo
	Pool    *pgxpool.Pool
}

// Close releases the connection pool, if any.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStore opens the store selected by cfg.StoreDriver. For postgres the
// pool is pinged before returning so a bad DATABASE_URL fails at startup.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.WarnContext(ctx, "using in-memory store; data is lost on exit")
		return &Store{Records: repo.NewMemoryRecordRepo()}, nil
	case config.StoreDriverPostgres:
	default:
		return nil, fmt.Errorf("bootstrap.OpenStore: unknown store driver %q", cfg.StoreDriver)
	}

	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap.OpenStore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap.OpenStore: ping: %w", err)
	}
	log.InfoContext(ctx, "database connection established")
	return &Store{Records: repo.NewRecordRepo(pool), Pool: pool}, nil
}

// Migrate applies every pending migration. It is a no-op for the in-memory
// store.
func Migrate(ctx context.Context, s *Store, log *slog.Logger) error {
	if s.Pool == nil {
		return nil
	}
	db := stdlib.OpenDBFromPool(s.Pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("bootstrap.Migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap.Migrate: %w", err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	return nil
}

// Services bundles the service layer.
type Services struct {
	Slugs    *service.SlugService
	Records  *service.RecordService
	Backfill *service.BackfillService
}

// NewServices wires the services on top of records.
func NewServices(records repo.RecordRepo, cfg config.Config, log *slog.Logger) Services {
	slugs := service.NewSlugService(records, log, service.SlugConfig{
		MaxAttempts:  cfg.SlugMaxAttempts,
		WriteRetries: cfg.SlugWriteRetries,
	})
	return Services{
		Slugs:    slugs,
		Records:  service.NewRecordService(records, slugs, log),
		Backfill: service.NewBackfillService(records, slugs, log),
	}
}
