// Package service contains the business logic for the petadot slug service.
// Services validate inputs, enforce ownership and moderation rules, and
// orchestrate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/repo"
	"github.com/Condfire/petadot/internal/slug"
)

// SlugConfig tunes slug allocation.
type SlugConfig struct {
	// MaxAttempts caps the suffix search. Zero means slug.DefaultMaxAttempts.
	MaxAttempts int
	// WriteRetries is how many times a write that lost the uniqueness race is
	// re-resolved and retried.
	WriteRetries int
	// RetryBackoff is the base of the exponential wait between retries.
	// Zero means 5ms.
	RetryBackoff time.Duration
}

// SlugService resolves a unique slug and persists it on a record.
type SlugService struct {
	repo     repo.RecordRepo
	resolver *slug.Resolver
	retries  uint64
	backoff  time.Duration
	log      *slog.Logger
}

// NewSlugService constructs a SlugService. The repo doubles as the resolver's
// existence checker.
func NewSlugService(r repo.RecordRepo, log *slog.Logger, cfg SlugConfig) *SlugService {
	if log == nil {
		log = slog.Default()
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 5 * time.Millisecond
	}
	retries := 0
	if cfg.WriteRetries > 0 {
		retries = cfg.WriteRetries
	}
	return &SlugService{
		repo:     r,
		resolver: slug.NewResolver(r, slug.WithMaxAttempts(cfg.MaxAttempts), slug.WithLogger(log)),
		retries:  uint64(retries),
		backoff:  backoff,
		log:      log,
	}
}

// Resolve returns the slug id would get for base without writing anything.
// Pass uuid.Nil for a record that does not exist yet.
func (s *SlugService) Resolve(ctx context.Context, c domain.Collection, id uuid.UUID, base string) (string, error) {
	got, err := s.resolver.ResolveUnique(ctx, base, c, id)
	if err != nil {
		return "", fmt.Errorf("service.SlugService.Resolve: %w", err)
	}
	return got, nil
}

// Assign resolves a unique slug for base and writes it to the record.
//
// Resolution and the write are separate round trips, so a concurrent writer
// can take the chosen slug in between. The store rejects the second write
// with domain.ErrSlugConflict; Assign then re-resolves and tries again, up to
// WriteRetries times.
func (s *SlugService) Assign(ctx context.Context, c domain.Collection, id uuid.UUID, base string) (string, error) {
	var (
		final   string
		attempt int
	)

	b := retry.WithMaxRetries(s.retries, retry.NewExponential(s.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		candidate, err := s.resolver.ResolveUnique(ctx, base, c, id)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateSlug(ctx, c, id, candidate); err != nil {
			if errors.Is(err, domain.ErrSlugConflict) {
				s.log.WarnContext(ctx, "slug write lost race",
					"collection", c,
					"record_id", id,
					"slug", candidate,
					"attempt", attempt,
				)
				return retry.RetryableError(err)
			}
			return err
		}
		final = candidate
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("service.SlugService.Assign: %w", err)
	}
	return final, nil
}
