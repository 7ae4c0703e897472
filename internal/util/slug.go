// Package util provides small string helpers shared by the wizard and the wish store.
package util

import (
	"regexp"
	"strings"

	"github.com/wishcraft/wishcraft-server/internal/id"
)

// SuffixLength is the number of random base-36 characters appended to a slug.
const SuffixLength = 4

var (
	// Anything outside lowercase alphanumerics, whitespace and dashes.
	disallowedRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	// Runs of whitespace become a single dash.
	whitespaceRe = regexp.MustCompile(`\s+`)
	// A well-formed slug as produced by GenerateSlug.
	slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// SlugName reduces a recipient name to the name part of a slug.
//
//	"Jane O'Brien"   → "jane-obrien"
//	"  Amir  Khan "  → "amir-khan"
//	"José"           → "jos"
//	""               → ""
func SlugName(name string) string {
	s := strings.ToLower(name)
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "- ")
}

// GenerateSlug builds "{name}-{occasion}-{suffix}" where suffix is four random
// base-36 characters. The result is not unique on its own; the wish store
// rejects duplicates and callers regenerate on collision.
//
// An empty name yields a degenerate slug such as "-wedding-k3x9". Callers
// reject blank recipient names before getting here.
func GenerateSlug(occasion, name string) string {
	return SlugName(name) + "-" + occasion + "-" + id.MustBase36(SuffixLength)
}

// IsSlug reports whether s only contains characters GenerateSlug can emit.
func IsSlug(s string) bool {
	return slugRe.MatchString(s)
}
