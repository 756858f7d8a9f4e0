package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/slug"
)

// missingCSVHeaders is the header row of the missing-slug export.
var missingCSVHeaders = []string{
	"collection", "id", "name", "city", "state", "status", "owner_id", "starts_at", "created_at", "candidate_base",
}

// RunBackfill handles POST /admin/slugs/backfill.
// ?collection= may be repeated; with none, every collection is backfilled.
func (s *Server) RunBackfill(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var names []string
	if !queryParam(w, r, "collection", &names) {
		return
	}
	collections := make([]domain.Collection, 0, len(names))
	for _, n := range names {
		c, err := domain.ParseCollection(n)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		collections = append(collections, c)
	}

	report, err := s.backfill.Run(r.Context(), collections, s.backfillBatch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BackfillResponse(report))
}

// ExportMissingSlugs handles GET /admin/slugs/missing.
// Lists records without a slug for one collection so operators can inspect
// them before a backfill. Use ?format=csv for CSV; default is JSON.
func (s *Server) ExportMissingSlugs(w http.ResponseWriter, r *http.Request) {
	var (
		collection string
		format     *string
		limit      *int
	)
	if !queryParam(w, r, "format", &format) || !queryParam(w, r, "limit", &limit) {
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "collection", r.URL.Query(), &collection); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	c, err := domain.ParseCollection(collection)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	asCSV := false
	if format != nil {
		switch *format {
		case "json":
		case "csv":
			asCSV = true
		default:
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be json or csv"))
			return
		}
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	p, _ := auth.PrincipalFrom(r.Context())
	recs, err := s.records.ListMissingSlug(r.Context(), p, c, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if asCSV {
		writeMissingCSV(w, recs)
		return
	}
	data := make([]Record, len(recs))
	for i, rec := range recs {
		data[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, data)
}

// requireAdmin rejects anonymous callers with 401 and non-admins with 403.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	p, ok := auth.PrincipalFrom(r.Context())
	switch {
	case !ok:
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorDetail{Code: "unauthenticated", Message: "authentication required"}})
		return false
	case !p.IsAdmin():
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: ErrorDetail{Code: "forbidden", Message: "admin only"}})
		return false
	}
	return true
}

// writeMissingCSV encodes records as CSV. candidate_base is the base slug a
// backfill would start probing from.
func writeMissingCSV(w http.ResponseWriter, recs []domain.Record) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(missingCSVHeaders)
	for _, rec := range recs {
		//nolint:errcheck
		cw.Write(recordToCSV(rec))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="missing-slugs.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func recordToCSV(rec domain.Record) []string {
	return []string{
		string(rec.Collection),
		rec.ID.String(),
		rec.Name,
		rec.City,
		rec.State,
		string(rec.Status),
		rec.OwnerID.String(),
		formatOptionalTime(rec.StartsAt),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		slug.ForBackfill(rec),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
