package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/slug"
)

// PreviewSlug handles GET /slugs/preview.
//
// Query: name, city, state, disambiguator, type (label used when the name
// cleans to nothing) and an optional collection. Without a collection only
// the normalized base is returned; with one, the handler also resolves the
// first free candidate. Resolving is read-only and the answer can be stale by
// the time a record is created.
func (s *Server) PreviewSlug(w http.ResponseWriter, r *http.Request) {
	var name, label, city, state, disambiguator, collection *string
	for _, q := range []struct {
		name string
		dst  **string
	}{
		{"name", &name},
		{"type", &label},
		{"city", &city},
		{"state", &state},
		{"disambiguator", &disambiguator},
		{"collection", &collection},
	} {
		if !queryParam(w, r, q.name, q.dst) {
			return
		}
	}

	var c domain.Collection
	if collection != nil {
		parsed, err := domain.ParseCollection(*collection)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		c = parsed
		if label == nil {
			l := slug.TypeLabel(c)
			label = &l
		}
	}

	resp := SlugPreview{
		Base: slug.Normalize(deref(name), deref(label), deref(city), deref(state), deref(disambiguator)),
	}
	if c != "" {
		resolved, err := s.slugs.Resolve(r.Context(), c, uuid.Nil, resp.Base)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Resolved = &resolved
	}
	writeJSON(w, http.StatusOK, resp)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
