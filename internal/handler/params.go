package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Condfire/petadot/internal/domain"
)

// collectionParam resolves the {collection} path segment. An unknown
// collection is a missing route, not a validation failure.
func collectionParam(w http.ResponseWriter, r *http.Request) (domain.Collection, bool) {
	c, err := domain.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody("unknown collection"))
		return "", false
	}
	return c, true
}

// idParam binds the {id} path segment as a UUID.
func idParam(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid id: "+err.Error()))
		return id, false
	}
	return id, true
}

// queryParam binds an optional form-style query parameter into dst.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid "+name+": "+err.Error()))
		return false
	}
	return true
}
