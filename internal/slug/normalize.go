// Package slug turns record names into URL-safe, human-readable identifiers
// and resolves collisions against a record store.
//
// Normalize and GenerateSlug are pure. Resolver.ResolveUnique is I/O-bound:
// it queries the store once per candidate and never caches what it has seen,
// so the store remains the only source of truth.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback replaces a name that cleans to nothing when no type label is given.
const Fallback = "sem-nome"

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRuns  = regexp.MustCompile(`\s+`)
	hyphenRuns = regexp.MustCompile(`-+`)
	wellFormed = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Valid reports whether s is a well-formed slug: lowercase ASCII letters and
// digits separated by single hyphens, with no leading or trailing hyphen.
func Valid(s string) bool {
	return wellFormed.MatchString(s)
}

// Normalize builds a base slug in the fixed order name-city-state-disambiguator.
// Empty segments are omitted. A name that cleans to nothing is replaced by the
// cleaned typeLabel, or by Fallback when that is empty too.
//
// The result is always Valid but not guaranteed unique.
//
//	Normalize("São Paulo! Dog #1", "pet", "São Paulo", "SP", "abc123")
//	// "sao-paulo-dog-1-sao-paulo-sp-abc123"
func Normalize(name, typeLabel, city, state, disambiguator string) string {
	head := Clean(name)
	if head == "" {
		head = Clean(typeLabel)
	}
	if head == "" {
		head = Fallback
	}
	return join(head, Clean(city), Clean(state), Clean(disambiguator))
}

// Clean reduces a single free-text segment to slug characters.
// Accents are decomposed and their marks dropped, the text is lowercased,
// anything outside [a-z0-9 whitespace -] is removed, whitespace runs become a
// hyphen, hyphen runs collapse to one, and edge hyphens are trimmed.
// Clean may return "".
func Clean(s string) string {
	s = stripMarks(s)
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	s = disallowed.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// stripMarks decomposes s (NFD) and removes the combining marks, so that
// "ã" becomes "a". Characters without a decomposition are left as they are.
func stripMarks(s string) string {
	// transform.Chain keeps internal state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// join hyphen-joins the non-empty, already-cleaned segments.
func join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "-")
}
