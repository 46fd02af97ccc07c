// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// Fallback is used when a title has no slug-safe characters at all.
const Fallback = "untitled"

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	dashes      = regexp.MustCompile(`-+`)
)

// Make lowercases title, drops everything but ASCII letters, digits,
// whitespace and hyphens, turns whitespace runs into single hyphens and
// trims hyphens at both ends. Make(Make(s)) == Make(s).
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = unsafeChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// Unique returns base if it is free, otherwise the first of base-2, base-3, ...
// for which taken reports false.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		c := base + "-" + strconv.Itoa(n)
		if !taken(c) {
			return c
		}
	}
}

// Set is a taken-predicate over a fixed set of slugs.
func Set(slugs ...string) func(string) bool {
	m := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		m[s] = struct{}{}
	}
	return func(s string) bool {
		_, ok := m[s]
		return ok
	}
}
