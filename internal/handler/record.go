package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/domain"
)

// CreateRecord handles POST /{collection}.
// The record is created even if its slug could not be assigned; the
// response then carries "slug": null and "slug_pending": true.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}
	var body RecordRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	created, err := s.records.Create(r.Context(), p, requestToRecord(c, uuid.Nil, body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordToResponse(created))
}

// ListRecords handles GET /{collection}.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}
	var page, limit *int
	if !queryParam(w, r, "page", &page) || !queryParam(w, r, "limit", &limit) {
		return
	}

	params := domain.NewPaginationParams(page, limit)
	recs, total, err := s.records.ListPaged(r.Context(), c, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]Record, len(recs))
	for i, rec := range recs {
		data[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, RecordList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetRecord handles GET /{collection}/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	rec, err := s.records.GetByID(r.Context(), c, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// GetRecordBySlug handles GET /{collection}/by-slug/{slug}.
func (s *Server) GetRecordBySlug(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}

	rec, err := s.records.GetBySlug(r.Context(), c, chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// UpdateRecord handles PUT /{collection}/{id}.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body RecordRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	updated, err := s.records.Update(r.Context(), p, requestToRecord(c, id, body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(updated))
}

// DeleteRecord handles DELETE /{collection}/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	if err := s.records.Delete(r.Context(), p, c, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransitionRecord handles POST /{collection}/{id}/transitions.
func (s *Server) TransitionRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body TransitionRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	updated, err := s.records.Transition(r.Context(), p, c, id, domain.Action(body.Action))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(updated))
}
