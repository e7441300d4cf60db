// Package storage implements the per-user file store over a metadata
// repository and a pluggable byte store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"photovault/internal/blob"
	"photovault/internal/errs"
	"photovault/internal/model"
	"photovault/internal/repository"
)

// FileStore enforces filename uniqueness per owner and strict ownership on
// read and delete. Metadata rows and blob content are written sequentially:
// the row is reserved first so the unique index arbitrates concurrent uploads,
// then bytes are written, and the row is rolled back if the write fails.
type FileStore struct {
	files repository.FileRepository
	blobs blob.Store
}

// NewFileStore constructs a file store.
func NewFileStore(files repository.FileRepository, blobs blob.Store) *FileStore {
	return &FileStore{files: files, blobs: blobs}
}

// validFilename accepts plain names only. Path separators and dot segments
// would let two distinct filenames map to one storage key, so one owner's
// upload could overwrite another record's bytes.
func validFilename(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// Exists reports whether the owner already has a file with that name.
func (s *FileStore) Exists(ctx context.Context, owner, filename string) (bool, error) {
	return s.files.Exists(ctx, owner, filename)
}

// Put persists content and creates the metadata record, returning the new
// record id. Returns errs.ErrDuplicateFilename if the (owner, filename) pair
// is taken; under a race exactly one caller succeeds.
func (s *FileStore) Put(ctx context.Context, owner, filename, contentType string, content []byte) (uuid.UUID, error) {
	if owner == "" || filename == "" {
		return uuid.Nil, fmt.Errorf("%w: empty owner/filename", errs.ErrValidation)
	}
	if !validFilename(filename) {
		return uuid.Nil, fmt.Errorf("%w: filename must be a plain name", errs.ErrValidation)
	}
	exists, err := s.files.Exists(ctx, owner, filename)
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		return uuid.Nil, errs.ErrDuplicateFilename
	}

	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	rec := &model.FileRecord{
		ID:          id,
		Owner:       owner,
		Filename:    filename,
		ContentType: contentType,
		StorageKey:  blob.Key(owner, filename),
	}
	// Reserve the row first; a losing racer fails here, before any bytes land.
	if err := s.files.Create(ctx, rec); err != nil {
		return uuid.Nil, err
	}
	if err := s.blobs.Put(ctx, rec.StorageKey, content); err != nil {
		// Byte persistence failed: the record must not survive.
		_ = s.files.Delete(ctx, id)
		return uuid.Nil, fmt.Errorf("persist bytes: %w", err)
	}
	return id, nil
}

// Get returns the raw bytes for an owner's file. A record whose bytes are
// missing is reported as not found, not as an internal error.
func (s *FileStore) Get(ctx context.Context, owner, filename string) ([]byte, error) {
	rec, err := s.files.GetByOwnerAndFilename(ctx, owner, filename)
	if err != nil {
		return nil, err
	}
	return s.blobs.Get(ctx, rec.StorageKey)
}

// List returns all records for an owner in creation order.
func (s *FileStore) List(ctx context.Context, owner string) ([]model.FileRecord, error) {
	return s.files.ListByOwner(ctx, owner)
}

// Delete removes a record and its bytes. The ownership check happens before
// any destructive action; byte removal is best-effort.
func (s *FileStore) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Owner != owner {
		return errs.ErrForbidden
	}
	if err := s.blobs.Delete(ctx, rec.StorageKey); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return s.files.Delete(ctx, id)
}
