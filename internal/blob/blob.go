// Package blob defines a pluggable byte store addressed by opaque keys.
package blob

import (
	"context"
	"path"
)

// Store persists raw file content under opaque keys. Implementations decide
// where bytes actually live; metadata records only carry the key.
type Store interface {
	// Put writes content under key, creating any required namespace.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the content stored under key, or errs.ErrNotFound if the
	// bytes are absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the content under key. Deleting an absent key is not an
	// error; removal is best-effort.
	Delete(ctx context.Context, key string) error
}

// Key derives the storage key for an owner's file. One namespace per owner.
// The filename must be a plain name; path.Join collapses dot segments, so
// callers validate before deriving a key.
func Key(owner, filename string) string {
	return path.Join(owner, filename)
}
