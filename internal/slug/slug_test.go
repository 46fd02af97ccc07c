package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travel_cms/internal/slug"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello World":               "hello-world",
		"  Serengeti Safari  ":      "serengeti-safari",
		"Gorilla  Trekking -- 2025": "gorilla-trekking-2025",
		"Dubai: Desert & Dunes!":    "dubai-desert-dunes",
		"--leading and trailing--":  "leading-and-trailing",
		"Café Zanzibar":             "caf-zanzibar",
		"tabs\tand\nnewlines":       "tabs-and-newlines",
		"!!!":                       slug.Fallback,
		"":                          slug.Fallback,
	}
	for in, want := range cases {
		assert.Equal(t, want, slug.Make(in), "Make(%q)", in)
	}
}

func TestMake_Idempotent(t *testing.T) {
	for _, in := range []string{"Hello World", " a - b ", "Mt. Kilimanjaro (5,895m)", "x--y", "***"} {
		once := slug.Make(in)
		assert.Equal(t, once, slug.Make(once), "input %q", in)
	}
}

func TestUnique(t *testing.T) {
	assert.Equal(t, "safari", slug.Unique("safari", slug.Set()))
	assert.Equal(t, "safari-2", slug.Unique("safari", slug.Set("safari")))
	assert.Equal(t, "safari-4", slug.Unique("safari", slug.Set("safari", "safari-2", "safari-3")))
	// gaps are filled from the bottom
	assert.Equal(t, "safari-2", slug.Unique("safari", slug.Set("safari", "safari-3")))
}
