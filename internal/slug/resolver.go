package slug

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
)

// DefaultMaxAttempts caps the collision search. Past it ResolveUnique
// returns ErrSlugExhausted.
const DefaultMaxAttempts = 10000

// Checker answers whether a slug is already held in a collection.
// excludeID is ignored when it is uuid.Nil; otherwise the record with that id
// does not count as a holder, so a record never collides with itself.
type Checker interface {
	ExistsBySlug(ctx context.Context, c domain.Collection, slug string, excludeID uuid.UUID) (bool, error)
}

// Resolver finds the lowest free numeric suffix for a base slug.
//
// The check is not atomic with the caller's later write: two concurrent
// requests can both see the same candidate as free. Callers that persist the
// result must handle domain.ErrSlugConflict from the write.
type Resolver struct {
	store       Checker
	maxAttempts int
	log         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for collision diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver constructs a Resolver backed by store.
func NewResolver(store Checker, opts ...Option) *Resolver {
	r := &Resolver{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveUnique returns base if it is free in c, otherwise the first free
// candidate among base-1, base-2, ... checked strictly in that order.
//
// Each candidate is one store round trip. The context is checked between
// candidates. Store errors abort the search. After maxAttempts suffixed ones the
// search stops with domain.ErrSlugExhausted.
func (r *Resolver) ResolveUnique(ctx context.Context, base string, c domain.Collection, excludeID uuid.UUID) (string, error) {
	if !Valid(base) {
		return "", fmt.Errorf("slug.Resolver.ResolveUnique: %w: malformed base slug %q", domain.ErrValidation, base)
	}

	taken, err := r.store.ExistsBySlug(ctx, c, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("slug.Resolver.ResolveUnique: %s %q: %w", c, base, err)
	}
	if !taken {
		return base, nil
	}

	for n := 1; n <= r.maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("slug.Resolver.ResolveUnique: %w", err)
		}

		candidate := base + "-" + strconv.Itoa(n)
		taken, err := r.store.ExistsBySlug(ctx, c, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("slug.Resolver.ResolveUnique: %s %q: %w", c, candidate, err)
		}
		if !taken {
			r.log.DebugContext(ctx, "slug collision resolved",
				"collection", c,
				"base", base,
				"slug", candidate,
				"lookups", n+1,
			)
			return candidate, nil
		}
	}

	r.log.WarnContext(ctx, "slug candidates exhausted",
		"collection", c,
		"base", base,
		"max_attempts", r.maxAttempts,
	)
	return "", fmt.Errorf("slug.Resolver.ResolveUnique: %s %q after %d attempts: %w",
		c, base, r.maxAttempts, domain.ErrSlugExhausted)
}
