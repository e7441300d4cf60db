package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"photovault/internal/model"
)

// FileRepository persists file metadata with a uniqueness constraint on
// (owner, filename).
type FileRepository interface {
	// Create inserts a new record. Returns errs.ErrDuplicateFilename when the
	// (owner, filename) pair already exists; the unique index arbitrates races.
	Create(ctx context.Context, rec *model.FileRecord) error
	// Exists reports whether the owner already has a file with that name.
	Exists(ctx context.Context, owner, filename string) (bool, error)
	// GetByOwnerAndFilename loads a single record.
	GetByOwnerAndFilename(ctx context.Context, owner, filename string) (*model.FileRecord, error)
	// GetByID loads a record by its identifier regardless of owner.
	GetByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error)
	// ListByOwner returns all records for an owner in creation order.
	ListByOwner(ctx context.Context, owner string) ([]model.FileRecord, error)
	// Delete removes a record by id.
	Delete(ctx context.Context, id uuid.UUID) error
}
