package slug

import (
	"strconv"

	"github.com/Condfire/petadot/internal/domain"
)

// idTokenLen is how many characters of a record id are folded into a slug.
const idTokenLen = 8

// typeLabels maps a collection to the label used when a name cleans to nothing.
// Users are exposed publicly as organizations, so they share the "ong" label.
var typeLabels = map[domain.Collection]string{
	domain.CollectionPets:     "pet",
	domain.CollectionOngs:     "ong",
	domain.CollectionEvents:   "evento",
	domain.CollectionPartners: "parceiro",
	domain.CollectionUsers:    "ong",
}

// TypeLabel returns the human-readable label for c, or "item" for an
// unknown collection.
func TypeLabel(c domain.Collection) string {
	if l, ok := typeLabels[c]; ok {
		return l
	}
	return "item"
}

// GenerateSlug is the batch variant of Normalize. The year (omitted when 0)
// and the first characters of id form the disambiguator, which makes the
// result collision-resistant without a store round trip. Callers still check
// the store before persisting.
func GenerateSlug(name, typeLabel, city, state string, year int, id string) string {
	var y string
	if year > 0 {
		y = strconv.Itoa(year)
	}
	return Normalize(name, typeLabel, city, state, join(y, idToken(id)))
}

// ForRecord builds the base slug a record gets at creation time.
//
//	pets      name-city-state-<id token>
//	events    name-city-state-<year>
//	ongs, partners, users   name-city-state
//
// Collections without a disambiguator rely entirely on ResolveUnique.
func ForRecord(r domain.Record) string {
	label := TypeLabel(r.Collection)
	switch r.Collection {
	case domain.CollectionPets:
		return Normalize(r.Name, label, r.City, r.State, idToken(r.ID.String()))
	case domain.CollectionEvents:
		var y string
		if r.Year() > 0 {
			y = strconv.Itoa(r.Year())
		}
		return Normalize(r.Name, label, r.City, r.State, y)
	default:
		return Normalize(r.Name, label, r.City, r.State, "")
	}
}

// ForBackfill builds the base slug for a record that never got one.
func ForBackfill(r domain.Record) string {
	return GenerateSlug(r.Name, TypeLabel(r.Collection), r.City, r.State, r.Year(), r.ID.String())
}

// idToken shortens an id to its first idTokenLen slug characters.
func idToken(id string) string {
	c := Clean(id)
	if len(c) > idTokenLen {
		c = c[:idTokenLen]
	}
	return Clean(c)
}
