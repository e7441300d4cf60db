// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// EncryptedBlob is opaque ciphertext produced on the client side. The server
// stores and returns it without inspection.
type EncryptedBlob []byte

// Account represents a registered user. The two encrypted key blobs are
// meaningful only to the owning client; the verification secret is compared
// server-side during phase two of login and is never returned to clients.
type Account struct {
	Username           string // unique, immutable
	Email              string
	EncMasterKey       EncryptedBlob
	EncVerificationKey EncryptedBlob
	VerificationSecret []byte // password-equivalent, sensitive at rest
	CreatedAt          time.Time
}

// FileRecord is per-file metadata. (Owner, Filename) is unique. StorageKey is
// an opaque handle into the byte store and is never exposed to clients.
type FileRecord struct {
	ID          uuid.UUID
	Owner       string // references Account.Username, immutable
	Filename    string
	ContentType string
	StorageKey  string
	CreatedAt   time.Time
}

// Session reports an issued token and its expiry (for diagnostics).
type Session struct {
	Token     string
	ExpiresAt time.Time
}
