package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/repo"
)

// mockRecordRepo is a hand-written test double for repo.RecordRepo.
// Each method is a function field; set only the ones your test needs.
type mockRecordRepo struct {
	create          func(ctx context.Context, rec domain.Record) (domain.Record, error)
	getByID         func(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error)
	getBySlug       func(ctx context.Context, c domain.Collection, slug string) (domain.Record, error)
	listPaged       func(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error)
	update          func(ctx context.Context, rec domain.Record) (domain.Record, error)
	delete          func(ctx context.Context, c domain.Collection, id uuid.UUID) error
	existsBySlug    func(ctx context.Context, c domain.Collection, slug string, excludeID uuid.UUID) (bool, error)
	updateSlug      func(ctx context.Context, c domain.Collection, id uuid.UUID, slug string) error
	updateStatus    func(ctx context.Context, c domain.Collection, id uuid.UUID, from, to domain.Status) (domain.Record, error)
	listMissingSlug func(ctx context.Context, c domain.Collection, limit int) ([]domain.Record, error)
}

func (m *mockRecordRepo) Create(ctx context.Context, rec domain.Record) (domain.Record, error) {
	return m.create(ctx, rec)
}
func (m *mockRecordRepo) GetByID(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error) {
	return m.getByID(ctx, c, id)
}
func (m *mockRecordRepo) GetBySlug(ctx context.Context, c domain.Collection, slug string) (domain.Record, error) {
	return m.getBySlug(ctx, c, slug)
}
func (m *mockRecordRepo) ListPaged(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error) {
	return m.listPaged(ctx, c, p)
}
func (m *mockRecordRepo) Update(ctx context.Context, rec domain.Record) (domain.Record, error) {
	return m.update(ctx, rec)
}
func (m *mockRecordRepo) Delete(ctx context.Context, c domain.Collection, id uuid.UUID) error {
	return m.delete(ctx, c, id)
}
func (m *mockRecordRepo) ExistsBySlug(ctx context.Context, c domain.Collection, slug string, excludeID uuid.UUID) (bool, error) {
	return m.existsBySlug(ctx, c, slug, excludeID)
}
func (m *mockRecordRepo) UpdateSlug(ctx context.Context, c domain.Collection, id uuid.UUID, slug string) error {
	return m.updateSlug(ctx, c, id, slug)
}
func (m *mockRecordRepo) UpdateStatus(ctx context.Context, c domain.Collection, id uuid.UUID, from, to domain.Status) (domain.Record, error) {
	return m.updateStatus(ctx, c, id, from, to)
}
func (m *mockRecordRepo) ListMissingSlug(ctx context.Context, c domain.Collection, limit int) ([]domain.Record, error) {
	return m.listMissingSlug(ctx, c, limit)
}

// compile-time check: mockRecordRepo must satisfy repo.RecordRepo.
var _ repo.RecordRepo = (*mockRecordRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	owner    = domain.Principal{ID: uuid.MustParse("9f1c2a4e-3b7d-4e1a-8c55-0a1b2c3d4e5f"), Role: domain.RoleUser}
	stranger = domain.Principal{ID: uuid.MustParse("2c7d9e10-55aa-4b8e-9d41-7f0e6a3b2c11"), Role: domain.RoleUser}
	admin    = domain.Principal{ID: uuid.MustParse("6a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d"), Role: domain.RoleAdmin}
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
