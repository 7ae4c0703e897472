// Package id generates identifiers for wizard sessions, event clients and slug suffixes.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// base36 is the alphabet of slug suffixes.
const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generate creates a prefixed NanoID, e.g. "wiz-V1StGXR8_Z5jdHi6B-myT".
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Base36 returns n random characters drawn from [0-9a-z].
func Base36(n int) (string, error) {
	s, err := gonanoid.Generate(base36, n)
	if err != nil {
		return "", fmt.Errorf("generate base36: %w", err)
	}
	return s, nil
}

// MustBase36 is like Base36 but panics on failure.
func MustBase36(n int) string {
	s, err := Base36(n)
	if err != nil {
		panic(fmt.Sprintf("failed to generate suffix: %v", err))
	}
	return s
}
