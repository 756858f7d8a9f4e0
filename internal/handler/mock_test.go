package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/handler"
	"github.com/Condfire/petadot/internal/service"
)

// mockRecordServicer is a test double for handler.RecordServicer.
// Set only the method fields your test needs.
type mockRecordServicer struct {
	create          func(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error)
	getByID         func(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error)
	getBySlug       func(ctx context.Context, c domain.Collection, slug string) (domain.Record, error)
	listPaged       func(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error)
	update          func(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error)
	delete          func(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID) error
	transition      func(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID, action domain.Action) (domain.Record, error)
	listMissingSlug func(ctx context.Context, p domain.Principal, c domain.Collection, limit int) ([]domain.Record, error)
}

func (m *mockRecordServicer) Create(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error) {
	return m.create(ctx, p, rec)
}
func (m *mockRecordServicer) GetByID(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error) {
	return m.getByID(ctx, c, id)
}
func (m *mockRecordServicer) GetBySlug(ctx context.Context, c domain.Collection, slug string) (domain.Record, error) {
	return m.getBySlug(ctx, c, slug)
}
func (m *mockRecordServicer) ListPaged(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error) {
	return m.listPaged(ctx, c, p)
}
func (m *mockRecordServicer) Update(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error) {
	return m.update(ctx, p, rec)
}
func (m *mockRecordServicer) Delete(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID) error {
	return m.delete(ctx, p, c, id)
}
func (m *mockRecordServicer) Transition(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID, action domain.Action) (domain.Record, error) {
	return m.transition(ctx, p, c, id, action)
}
func (m *mockRecordServicer) ListMissingSlug(ctx context.Context, p domain.Principal, c domain.Collection, limit int) ([]domain.Record, error) {
	return m.listMissingSlug(ctx, p, c, limit)
}

// compile-time check: mockRecordServicer must satisfy handler.RecordServicer.
var _ handler.RecordServicer = (*mockRecordServicer)(nil)

type mockSlugResolver struct {
	resolve func(ctx context.Context, c domain.Collection, id uuid.UUID, base string) (string, error)
}

func (m *mockSlugResolver) Resolve(ctx context.Context, c domain.Collection, id uuid.UUID, base string) (string, error) {
	return m.resolve(ctx, c, id, base)
}

var _ handler.SlugResolver = (*mockSlugResolver)(nil)

type mockBackfillServicer struct {
	run func(ctx context.Context, collections []domain.Collection, batchSize int) (service.Report, error)
}

func (m *mockBackfillServicer) Run(ctx context.Context, collections []domain.Collection, batchSize int) (service.Report, error) {
	return m.run(ctx, collections, batchSize)
}

var _ handler.BackfillServicer = (*mockBackfillServicer)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	owner = domain.Principal{ID: uuid.MustParse("9f1c2a4e-3b7d-4e1a-8c55-0a1b2c3d4e5f"), Role: domain.RoleUser}
	admin = domain.Principal{ID: uuid.MustParse("6a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d"), Role: domain.RoleAdmin}
)

// newHTTPHandler wires a Server with the given mocks into its router, the
// same way main.go does minus the middleware stack.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return handler.NewServer(d).Routes()
}

// as attaches p to the request the way the principal middleware would.
func as(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}
