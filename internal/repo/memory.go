package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
)

// memoryRecordRepo is an in-process RecordRepo. It mirrors the Postgres
// semantics that matter to slug resolution: exact-match slug lookups, the
// id exclusion, and a per-collection unique slug constraint on write.
// Every call takes the lock once, so individual calls are atomic but a
// check followed by a write is not, same as with the real store.
type memoryRecordRepo struct {
	mu      sync.Mutex
	records map[domain.Collection]map[uuid.UUID]domain.Record
	now     func() time.Time
}

// NewMemoryRecordRepo returns an empty in-memory RecordRepo.
func NewMemoryRecordRepo() RecordRepo {
	return &memoryRecordRepo{
		records: map[domain.Collection]map[uuid.UUID]domain.Record{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryRecordRepo) collection(c domain.Collection) (map[uuid.UUID]domain.Record, error) {
	if _, err := tableFor(c); err != nil {
		return nil, err
	}
	recs, ok := m.records[c]
	if !ok {
		recs = map[uuid.UUID]domain.Record{}
		m.records[c] = recs
	}
	return recs, nil
}

func (m *memoryRecordRepo) Create(_ context.Context, rec domain.Record) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(rec.Collection)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.Create: %w", err)
	}

	ts := m.now()
	rec.ID = uuid.New()
	rec.Slug = ""
	rec.Status = domain.StatusPending
	rec.CreatedAt = ts
	rec.UpdatedAt = ts
	recs[rec.ID] = rec
	return rec, nil
}

func (m *memoryRecordRepo) GetByID(_ context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.GetByID: %w", err)
	}
	rec, ok := recs[id]
	if !ok {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.GetByID: %w", domain.ErrNotFound)
	}
	return rec, nil
}

func (m *memoryRecordRepo) GetBySlug(_ context.Context, c domain.Collection, slug string) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.GetBySlug: %w", err)
	}
	if slug != "" {
		for _, rec := range recs {
			if rec.Slug == slug {
				return rec, nil
			}
		}
	}
	return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.GetBySlug: %w", domain.ErrNotFound)
}

func (m *memoryRecordRepo) ListPaged(_ context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MemoryRecordRepo.ListPaged: %w", err)
	}

	all := sorted(recs, func(a, b domain.Record) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	page := []domain.Record{}
	if off := p.Offset(); off < len(all) {
		end := min(off+p.Limit, len(all))
		page = append(page, all[off:end]...)
	}
	return page, int64(len(all)), nil
}

func (m *memoryRecordRepo) Update(_ context.Context, rec domain.Record) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(rec.Collection)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.Update: %w", err)
	}
	cur, ok := recs[rec.ID]
	if !ok {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.Update: %w", domain.ErrNotFound)
	}

	cur.Name = rec.Name
	cur.City = rec.City
	cur.State = rec.State
	cur.StartsAt = rec.StartsAt
	cur.UpdatedAt = m.now()
	recs[cur.ID] = cur
	return cur, nil
}

func (m *memoryRecordRepo) Delete(_ context.Context, c domain.Collection, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return fmt.Errorf("repo.MemoryRecordRepo.Delete: %w", err)
	}
	if _, ok := recs[id]; !ok {
		return fmt.Errorf("repo.MemoryRecordRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(recs, id)
	return nil
}

func (m *memoryRecordRepo) ExistsBySlug(_ context.Context, c domain.Collection, slug string, excludeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return false, fmt.Errorf("repo.MemoryRecordRepo.ExistsBySlug: %w", err)
	}
	return holderOf(recs, slug, excludeID), nil
}

func (m *memoryRecordRepo) UpdateSlug(_ context.Context, c domain.Collection, id uuid.UUID, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return fmt.Errorf("repo.MemoryRecordRepo.UpdateSlug: %w", err)
	}
	rec, ok := recs[id]
	if !ok {
		return fmt.Errorf("repo.MemoryRecordRepo.UpdateSlug: %w", domain.ErrNotFound)
	}
	if holderOf(recs, slug, id) {
		return fmt.Errorf("repo.MemoryRecordRepo.UpdateSlug: %q: %w", slug, domain.ErrSlugConflict)
	}

	rec.Slug = slug
	rec.UpdatedAt = m.now()
	recs[id] = rec
	return nil
}

func (m *memoryRecordRepo) UpdateStatus(_ context.Context, c domain.Collection, id uuid.UUID, from, to domain.Status) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.UpdateStatus: %w", err)
	}
	rec, ok := recs[id]
	if !ok || rec.Status != from {
		return domain.Record{}, fmt.Errorf("repo.MemoryRecordRepo.UpdateStatus: %w: record is no longer %s", domain.ErrInvalidTransition, from)
	}

	rec.Status = to
	rec.UpdatedAt = m.now()
	recs[id] = rec
	return rec, nil
}

func (m *memoryRecordRepo) ListMissingSlug(_ context.Context, c domain.Collection, limit int) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.collection(c)
	if err != nil {
		return nil, fmt.Errorf("repo.MemoryRecordRepo.ListMissingSlug: %w", err)
	}

	all := sorted(recs, func(a, b domain.Record) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	out := []domain.Record{}
	for _, rec := range all {
		if len(out) >= limit {
			break
		}
		if rec.Slug == "" {
			out = append(out, rec)
		}
	}
	return out, nil
}

// holderOf reports whether a record other than excludeID holds slug.
func holderOf(recs map[uuid.UUID]domain.Record, slug string, excludeID uuid.UUID) bool {
	for id, rec := range recs {
		if rec.Slug == slug && slug != "" && id != excludeID {
			return true
		}
	}
	return false
}

func sorted(recs map[uuid.UUID]domain.Record, less func(a, b domain.Record) bool) []domain.Record {
	all := make([]domain.Record, 0, len(recs))
	for _, rec := range recs {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	return all
}
