// Package crypto implements server-side secret comparison helpers.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// SecretEqual compares a stored verification secret against a candidate in
// constant time. Unequal lengths are an immediate mismatch; for equal lengths
// the comparison accumulates pairwise XORs across the full input regardless of
// where the first difference occurs.
func SecretEqual(stored, candidate []byte) bool {
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}
