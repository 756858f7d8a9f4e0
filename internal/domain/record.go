// Package domain contains the core data types for the petadot slug service.
// This package has no database or transport dependencies and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Collection names a record store partition. Slugs are unique within a
// collection; distinct collections do not share a namespace.
type Collection string

const (
	CollectionPets     Collection = "pets"
	CollectionOngs     Collection = "ongs"
	CollectionEvents   Collection = "events"
	CollectionPartners Collection = "partners"
	CollectionUsers    Collection = "users"
)

// Collections lists every known collection in a stable order.
// Backfill iterates this list when no collection is named.
var Collections = []Collection{
	CollectionPets,
	CollectionOngs,
	CollectionEvents,
	CollectionPartners,
	CollectionUsers,
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCollection converts a path or flag value into a Collection.
// Returns ErrValidation for unknown names.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown collection %q", ErrValidation, s)
	}
	return c, nil
}

// Record is the opaque entity behind every collection: a pet listing, an NGO
// profile, an event, a partner, or a user acting as an organization.
// Only the attributes that feed the slug, ownership, and moderation are modelled.
//
// Slug is empty until assigned. StartsAt is only meaningful for events.
type Record struct {
	ID         uuid.UUID  `json:"id"`
	Collection Collection `json:"collection"`
	Name       string     `json:"name"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	Slug       string     `json:"slug,omitempty"`
	Status     Status     `json:"status"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// SlugStale is set by an update whose name or city changed but whose
	// slug could not be reassigned. Not persisted.
	SlugStale bool `json:"-"`
}

// Year returns the event year used as a slug disambiguator, or 0 when the
// record carries no date.
func (r Record) Year() int {
	if r.StartsAt == nil {
		return 0
	}
	return r.StartsAt.Year()
}
