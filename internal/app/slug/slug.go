// Package slug generates and validates short-link identifiers.
package slug

import (
	"crypto/rand"
	"fmt"
)

const (
	// GeneratedLength is the fixed length of generated slugs. With a
	// 36-symbol alphabet that gives roughly 7.8e10 possible values.
	GeneratedLength = 7

	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Generate returns a random lowercase-alphanumeric slug of GeneratedLength.
// Values are drawn from crypto/rand so slugs cannot be enumerated or
// predicted from creation time. Collision handling is up to the caller.
func Generate() (string, error) {
	buf := make([]byte, GeneratedLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("slug: read random bytes: %w", err)
	}

	out := make([]byte, GeneratedLength)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
