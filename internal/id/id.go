// Package id generates prefixed unique identifiers for Writha entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed NanoID, e.g. "story-V1StGXR8_Z5jdHi6B-myT".
//
// NanoIDs are URL-friendly and shorter than UUIDs (21 characters vs 36),
// and the prefix makes identifiers self-describing in logs and URLs.
// Returns an error only if the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on failure.
// Reserve this for initialization paths where a missing entropy source
// should crash the process.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
