// Package handler implements the HTTP handlers for the petadot slug API.
// All handlers are methods on Server. They are split into files by resource
// (health.go, record.go, preview.go, admin.go) but share the same struct so
// they can reach its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/service"
	"github.com/Condfire/petadot/spec"
)

// RecordServicer defines the record operations the handlers depend on.
// Defining it here, in the consumer package, lets handler tests inject a mock
// without touching the store.
type RecordServicer interface {
	Create(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error)
	GetByID(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error)
	GetBySlug(ctx context.Context, c domain.Collection, slug string) (domain.Record, error)
	ListPaged(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error)
	Update(ctx context.Context, p domain.Principal, rec domain.Record) (domain.Record, error)
	Delete(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID) error
	Transition(ctx context.Context, p domain.Principal, c domain.Collection, id uuid.UUID, action domain.Action) (domain.Record, error)
	ListMissingSlug(ctx context.Context, p domain.Principal, c domain.Collection, limit int) ([]domain.Record, error)
}

// SlugResolver previews the slug a new record would get.
type SlugResolver interface {
	Resolve(ctx context.Context, c domain.Collection, id uuid.UUID, base string) (string, error)
}

// BackfillServicer runs slug backfills.
type BackfillServicer interface {
	Run(ctx context.Context, collections []domain.Collection, batchSize int) (service.Report, error)
}

// Deps collects the Server's collaborators. Any service may be nil in tests
// that do not exercise its routes.
type Deps struct {
	Records  RecordServicer
	Slugs    SlugResolver
	Backfill BackfillServicer
	Log      *slog.Logger

	// BackfillBatchSize is passed to every backfill run.
	BackfillBatchSize int
}

// Server implements every API endpoint.
type Server struct {
	records       RecordServicer
	slugs         SlugResolver
	backfill      BackfillServicer
	log           *slog.Logger
	backfillBatch int
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		records:       d.Records,
		slugs:         d.Slugs,
		backfill:      d.Backfill,
		log:           log,
		backfillBatch: d.BackfillBatchSize,
	}
}

// Routes returns the API router. Cross-cutting middleware (request IDs,
// principal, logging, CORS) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: ErrorDetail{Code: "method_not_allowed", Message: "method not allowed"}})
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/slugs/preview", s.PreviewSlug)

	r.Route("/admin/slugs", func(r chi.Router) {
		r.Post("/backfill", s.RunBackfill)
		r.Get("/missing", s.ExportMissingSlugs)
	})

	r.Route("/{collection}", func(r chi.Router) {
		r.Get("/", s.ListRecords)
		r.Post("/", s.CreateRecord)
		r.Get("/by-slug/{slug}", s.GetRecordBySlug)
		r.Get("/{id}", s.GetRecord)
		r.Put("/{id}", s.UpdateRecord)
		r.Delete("/{id}", s.DeleteRecord)
		r.Post("/{id}/transitions", s.TransitionRecord)
	})
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
