package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/repo"
	"github.com/Condfire/petadot/internal/slug"
)

// DefaultBackfillBatchSize is used when Run is given a batch size below 1.
const DefaultBackfillBatchSize = 500

// CollectionReport counts the outcome of a backfill over one collection.
type CollectionReport struct {
	Collection domain.Collection `json:"collection"`
	Assigned   int               `json:"assigned"`
	Failed     int               `json:"failed"`
}

// Report is the outcome of a backfill run, one entry per collection in the
// order they were requested.
type Report struct {
	Collections []CollectionReport `json:"collections"`
}

// BackfillService assigns slugs to records that never got one, for example
// because slug assignment failed at creation time.
type BackfillService struct {
	repo  repo.RecordRepo
	slugs *SlugService
	log   *slog.Logger
}

// NewBackfillService constructs a BackfillService.
func NewBackfillService(r repo.RecordRepo, slugs *SlugService, log *slog.Logger) *BackfillService {
	if log == nil {
		log = slog.Default()
	}
	return &BackfillService{repo: r, slugs: slugs, log: log}
}

// Run backfills every named collection, or all collections when none are
// named. Collections are independent uniqueness namespaces and run
// concurrently; records within a collection are processed one at a time,
// oldest first.
//
// A record whose slug cannot be allocated is counted as failed and skipped.
// Any other error stops the whole run.
func (s *BackfillService) Run(ctx context.Context, collections []domain.Collection, batchSize int) (Report, error) {
	if len(collections) == 0 {
		collections = domain.Collections
	}
	for _, c := range collections {
		if !c.Valid() {
			return Report{}, fmt.Errorf("service.BackfillService.Run: %w: unknown collection %q", domain.ErrValidation, c)
		}
	}
	if batchSize < 1 {
		batchSize = DefaultBackfillBatchSize
	}

	reports := make([]CollectionReport, len(collections))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collections {
		i, c := i, c
		g.Go(func() error {
			r, err := s.runCollection(ctx, c, batchSize)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("service.BackfillService.Run: %w", err)
	}
	return Report{Collections: reports}, nil
}

func (s *BackfillService) runCollection(ctx context.Context, c domain.Collection, batchSize int) (CollectionReport, error) {
	report := CollectionReport{Collection: c}

	// Failed records keep an empty slug and would come back on every page,
	// so each query asks for enough rows to see past them.
	skipped := map[uuid.UUID]bool{}
	for {
		batch, err := s.repo.ListMissingSlug(ctx, c, batchSize+len(skipped))
		if err != nil {
			return report, fmt.Errorf("%s: %w", c, err)
		}

		progressed := false
		for _, rec := range batch {
			if skipped[rec.ID] {
				continue
			}
			progressed = true

			_, err := s.slugs.Assign(ctx, c, rec.ID, slug.ForBackfill(rec))
			switch {
			case err == nil:
				report.Assigned++
			case errors.Is(err, domain.ErrSlugExhausted),
				errors.Is(err, domain.ErrSlugConflict),
				errors.Is(err, domain.ErrNotFound):
				report.Failed++
				skipped[rec.ID] = true
				s.log.WarnContext(ctx, "backfill skipped record",
					"collection", c,
					"record_id", rec.ID,
					"error", err,
				)
			default:
				return report, fmt.Errorf("%s %s: %w", c, rec.ID, err)
			}
		}
		if !progressed {
			break
		}
	}

	s.log.InfoContext(ctx, "backfill finished",
		"collection", c,
		"assigned", report.Assigned,
		"failed", report.Failed,
	)
	return report, nil
}
