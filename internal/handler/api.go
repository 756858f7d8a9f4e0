package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/service"
)

// Wire types mirror the schemas in spec/openapi.yaml.

// ErrorDetail is the body of every non-2xx response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under "error".
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// RecordRequest is the body of POST /{collection} and PUT /{collection}/{id}.
type RecordRequest struct {
	Name     string     `json:"name"`
	City     *string    `json:"city,omitempty"`
	State    *string    `json:"state,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

// Record is the public representation of a domain.Record.
// Slug is null until assigned; SlugPending flags that case. SlugStale flags
// an update that should have moved the slug but could not.
type Record struct {
	Id          openapi_types.UUID `json:"id"`
	Collection  string             `json:"collection"`
	Name        string             `json:"name"`
	City        string             `json:"city"`
	State       string             `json:"state"`
	Slug        *string            `json:"slug"`
	SlugPending bool               `json:"slug_pending"`
	SlugStale   bool               `json:"slug_stale"`
	Status      string             `json:"status"`
	OwnerId     openapi_types.UUID `json:"owner_id"`
	StartsAt    *time.Time         `json:"starts_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// RecordList is returned by GET /{collection}.
type RecordList struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// TransitionRequest is the body of POST /{collection}/{id}/transitions.
type TransitionRequest struct {
	Action string `json:"action"`
}

// SlugPreview is returned by GET /slugs/preview. Resolved is only set when a
// collection was given.
type SlugPreview struct {
	Base     string  `json:"base"`
	Resolved *string `json:"resolved,omitempty"`
}

// BackfillResponse is returned by POST /admin/slugs/backfill.
type BackfillResponse = service.Report

func recordToResponse(r domain.Record) Record {
	resp := Record{
		Id:          r.ID,
		Collection:  string(r.Collection),
		Name:        r.Name,
		City:        r.City,
		State:       r.State,
		SlugPending: r.Slug == "",
		SlugStale:   r.SlugStale,
		Status:      string(r.Status),
		OwnerId:     r.OwnerID,
		StartsAt:    r.StartsAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Slug != "" {
		s := r.Slug
		resp.Slug = &s
	}
	return resp
}

// requestToRecord builds a domain.Record from a request body. id is uuid.Nil
// on create.
func requestToRecord(c domain.Collection, id openapi_types.UUID, body RecordRequest) domain.Record {
	rec := domain.Record{
		ID:         id,
		Collection: c,
		Name:       body.Name,
		StartsAt:   body.StartsAt,
	}
	if body.City != nil {
		rec.City = *body.City
	}
	if body.State != nil {
		rec.State = *body.State
	}
	return rec
}
