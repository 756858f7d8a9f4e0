package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/repo"
	"github.com/Condfire/petadot/internal/slug"
)

// RecordService implements the CRUD and moderation flows shared by every
// collection. Reads are public; every write needs a principal.
type RecordService struct {
	repo  repo.RecordRepo
	slugs *SlugService
	log   *slog.Logger
}

// NewRecordService constructs a RecordService.
func NewRecordService(r repo.RecordRepo, slugs *SlugService, log *slog.Logger) *RecordService {
	if log == nil {
		log = slog.Default()
	}
	return &RecordService{repo: r, slugs: slugs, log: log}
}

// Create inserts a record owned by p and then assigns its slug.
//
// The insert is what the caller asked for, so a slug failure does not undo
// it: the error is logged and the record comes back with an empty Slug,
// to be picked up by a backfill run.
func (s *RecordService) Create(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Create: %w", err)
	}
	rec = trimRecord(rec)
	if err := validateRecord(rec); err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Create: %w", err)
	}
	rec.OwnerID = p.ID

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Create: %w", err)
	}

	assigned, err := s.slugs.Assign(ctx, created.Collection, created.ID, slug.ForRecord(created))
	if err != nil {
		s.log.ErrorContext(ctx, "slug assignment failed",
			"collection", created.Collection,
			"record_id", created.ID,
			"error", err,
		)
		return created, nil
	}
	created.Slug = assigned
	return created, nil
}

// GetByID returns a single record.
func (s *RecordService) GetByID(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error) {
	rec, err := s.repo.GetByID(ctx, c, id)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.GetByID: %w", err)
	}
	return rec, nil
}

// GetBySlug returns the record holding sl. A malformed slug cannot be held
// by any record and is reported as not found without a store round trip.
func (s *RecordService) GetBySlug(ctx context.Context, c domain.Collection, sl string) (domain.Record, error) {
	if !c.Valid() {
		return domain.Record{}, fmt.Errorf("service.RecordService.GetBySlug: %w: unknown collection %q", domain.ErrValidation, c)
	}
	if !slug.Valid(sl) {
		return domain.Record{}, fmt.Errorf("service.RecordService.GetBySlug: %w", domain.ErrNotFound)
	}
	rec, err := s.repo.GetBySlug(ctx, c, sl)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.GetBySlug: %w", err)
	}
	return rec, nil
}

// ListPaged returns one page of records and the collection total.
func (s *RecordService) ListPaged(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error) {
	recs, total, err := s.repo.ListPaged(ctx, c, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RecordService.ListPaged: %w", err)
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs, total, nil
}

// Update overwrites the descriptive fields of a record the principal manages.
//
// The slug is recomputed only when the cleaned name or city changed, or the
// record never got one. Resolution excludes the record itself, so an update
// whose base slug is unchanged keeps its slug. If the recompute fails the
// update still stands and the record comes back with SlugStale set.
func (s *RecordService) Update(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	rec = trimRecord(rec)
	if err := validateRecord(rec); err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}

	current, err := s.repo.GetByID(ctx, rec.Collection, rec.ID)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	if !p.CanManage(current) {
		return domain.Record{}, fmt.Errorf("service.RecordService.Update: %w", domain.ErrForbidden)
	}

	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	if !slugStale(current, updated) {
		return updated, nil
	}

	assigned, err := s.slugs.Assign(ctx, updated.Collection, updated.ID, slug.ForRecord(updated))
	if err != nil {
		s.log.ErrorContext(ctx, "slug reassignment failed",
			"collection", updated.Collection,
			"record_id", updated.ID,
			"error", err,
		)
		updated.SlugStale = true
		return updated, nil
	}
	updated.Slug = assigned
	return updated, nil
}

// Delete removes a record the principal manages.
func (s *RecordService) Delete(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID) error {
	if err := requirePrincipal(p); err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}

	current, err := s.repo.GetByID(ctx, c, id)
	if err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}
	if !p.CanManage(current) {
		return fmt.Errorf("service.RecordService.Delete: %w", domain.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, c, id); err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}
	return nil
}

// Transition applies a moderation action. The write only lands if the record
// is still in the status the decision was made from.
func (s *RecordService) Transition(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID, action domain.Action) (domain.Record, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Transition: %w", err)
	}

	current, err := s.repo.GetByID(ctx, c, id)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Transition: %w", err)
	}

	isOwner := p.ID == current.OwnerID
	next, err := domain.NextStatus(c, current.Status, action, p, isOwner)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Transition: %w", err)
	}

	updated, err := s.repo.UpdateStatus(ctx, c, id, current.Status, next)
	if err != nil {
		return domain.Record{}, fmt.Errorf("service.RecordService.Transition: %w", err)
	}

	s.log.InfoContext(ctx, "record status changed",
		"collection", c,
		"record_id", id,
		"action", action,
		"from", current.Status,
		"to", next,
		"principal_id", p.ID,
	)
	return updated, nil
}

// ListMissingSlug returns up to limit records that never got a slug, oldest
// first. Admin only; it feeds the operator export ahead of a backfill.
func (s *RecordService) ListMissingSlug(ctx context.Context, p domain.Principal, c domain.Collection, limit int) ([]domain.Record, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, fmt.Errorf("service.RecordService.ListMissingSlug: %w", err)
	}
	if !p.IsAdmin() {
		return nil, fmt.Errorf("service.RecordService.ListMissingSlug: %w", domain.ErrForbidden)
	}
	if limit < 1 {
		limit = DefaultBackfillBatchSize
	}
	recs, err := s.repo.ListMissingSlug(ctx, c, limit)
	if err != nil {
		return nil, fmt.Errorf("service.RecordService.ListMissingSlug: %w", err)
	}
	return recs, nil
}

func requirePrincipal(p domain.Principal) error {
	if p.ID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

func trimRecord(rec domain.Record) domain.Record {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.City = strings.TrimSpace(rec.City)
	rec.State = strings.TrimSpace(rec.State)
	return rec
}

// validateRecord checks the rules shared by create and update.
// A name made only of punctuation is allowed; its slug falls back to the
// collection label.
func validateRecord(rec domain.Record) error {
	if !rec.Collection.Valid() {
		return fmt.Errorf("%w: unknown collection %q", domain.ErrValidation, rec.Collection)
	}
	if rec.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if rec.StartsAt != nil && rec.Collection != domain.CollectionEvents {
		return fmt.Errorf("%w: starts_at only applies to events", domain.ErrValidation)
	}
	return nil
}

// slugStale reports whether an update changed what the slug is built from.
func slugStale(before, after domain.Record) bool {
	if after.Slug == "" {
		return true
	}
	return slug.Clean(before.Name) != slug.Clean(after.Name) ||
		slug.Clean(before.City) != slug.Clean(after.City)
}
