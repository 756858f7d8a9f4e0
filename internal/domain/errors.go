package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing name, unknown collection).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when a mutating operation runs without a principal.
// Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when the principal is neither the owner nor an admin.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrSlugConflict is returned by the write path when another record already
// holds the slug (a unique index violation). The caller re-resolves and retries.
var ErrSlugConflict = errors.New("slug already taken")

// ErrSlugExhausted is returned when the collision search reached its attempt cap
// without finding a free suffix.
var ErrSlugExhausted = errors.New("could not allocate unique slug")

// ErrInvalidTransition is returned when a status action is not legal from the
// record's current status. Handlers should map this to HTTP 409.
var ErrInvalidTransition = errors.New("invalid status transition")
