// Package verify computes and compares artifact digests.
//
// The algorithm is pinned: manifest authors publish SHA-256 hex digests and
// every consumer must agree on the same algorithm, so it is not selectable
// per artifact.
package verify

import (
	_ "crypto/sha256"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Algorithm is the digest algorithm used for every hashed artifact
const Algorithm = digest.SHA256

// Digest returns the lowercase hex digest of data
func Digest(data []byte) string {
	return Algorithm.FromBytes(data).Encoded()
}

// Matches reports whether data digests to expected, ignoring hex case
func Matches(data []byte, expected string) bool {
	return strings.EqualFold(Digest(data), strings.TrimSpace(expected))
}

// Validate checks that hex is a well-formed digest for Algorithm
func Validate(hex string) error {
	if err := Algorithm.Validate(strings.ToLower(hex)); err != nil {
		return fmt.Errorf("invalid %s digest %q: %w", Algorithm, hex, err)
	}

	return nil
}
