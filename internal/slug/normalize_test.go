package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Condfire/petadot/internal/slug"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		typeLabel     string
		city          string
		state         string
		disambiguator string
		want          string
	}{
		{
			name:          "accents punctuation and all segments",
			in:            "São Paulo! Dog #1",
			typeLabel:     "pet",
			city:          "São Paulo",
			state:         "SP",
			disambiguator: "abc123",
			want:          "sao-paulo-dog-1-sao-paulo-sp-abc123",
		},
		{
			name: "name only",
			in:   "Rex",
			want: "rex",
		},
		{
			name:  "empty city is omitted",
			in:    "Rex",
			state: "RJ",
			want:  "rex-rj",
		},
		{
			name: "whitespace runs become one hyphen",
			in:   "  Too    Many \t Spaces  ",
			want: "too-many-spaces",
		},
		{
			name: "hyphen runs collapse",
			in:   "Too---Many -- Dashes-",
			want: "too-many-dashes",
		},
		{
			name: "non-ascii space is whitespace",
			in:   "Abrigo\u00a0Feliz",
			want: "abrigo-feliz",
		},
		{
			name: "cedilla and tilde",
			in:   "Associação Protetora",
			city: "Maceió",
			want: "associacao-protetora-maceio",
		},
		{
			name: "characters without decomposition are dropped",
			in:   "Straße Ørsted",
			want: "strae-rsted",
		},
		{
			name:      "empty name falls back to type label",
			in:        "!!!",
			typeLabel: "ong",
			want:      "ong",
		},
		{
			name:      "fallback keeps other segments",
			in:        "???",
			typeLabel: "evento",
			city:      "Recife",
			state:     "PE",
			want:      "evento-recife-pe",
		},
		{
			name: "empty name and label falls back to literal",
			in:   "",
			want: slug.Fallback,
		},
		{
			name:          "disambiguator is cleaned",
			in:            "Luna",
			disambiguator: "2024 / X",
			want:          "luna-2024-x",
		},
		{
			name:          "segment that cleans to nothing leaves no double hyphen",
			in:            "Luna",
			city:          "***",
			state:         "MG",
			disambiguator: "--",
			want:          "luna-mg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slug.Normalize(tt.in, tt.typeLabel, tt.city, tt.state, tt.disambiguator)
			assert.Equal(t, tt.want, got)
			assert.True(t, slug.Valid(got), "result %q must be well-formed", got)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	first := slug.Normalize("Mel & Pipoca", "pet", "Belo Horizonte", "MG", "7f3a")
	second := slug.Normalize("Mel & Pipoca", "pet", "Belo Horizonte", "MG", "7f3a")

	assert.Equal(t, first, second)
}

func TestNormalize_URLSafe(t *testing.T) {
	got := slug.Normalize("São Paulo! Dog #1", "pet", "São Paulo", "SP", "abc123")

	assert.Regexp(t, `^[a-z0-9]+(-[a-z0-9]+)*$`, got)
	assert.Contains(t, got, "sao-paulo")
	assert.Contains(t, got, "-sp-")
	assert.NotContains(t, got, "ã")
}

func TestNormalize_FallbackNeverEmpty(t *testing.T) {
	got := slug.Normalize("!!!", "ong", "", "", "")

	assert.NotEmpty(t, got)
	assert.True(t, slug.Valid(got))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "", slug.Clean("   "))
	assert.Equal(t, "", slug.Clean("!@#$%"))
	assert.Equal(t, "joao-pessoa", slug.Clean("João  Pessoa"))
	assert.Equal(t, "abc-123", slug.Clean("-ABC_ 123"))
}

func TestValid(t *testing.T) {
	valid := []string{"a", "rex", "rex-1", "sao-paulo-sp-2024"}
	invalid := []string{"", "-rex", "rex-", "rex--1", "Rex", "são", "rex_1", "rex 1"}

	for _, s := range valid {
		assert.True(t, slug.Valid(s), "%q should be valid", s)
	}
	for _, s := range invalid {
		assert.False(t, slug.Valid(s), "%q should be invalid", s)
	}
}
