package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"photovault/internal/errs"
	"photovault/internal/model"
)

// FileRepo implements FileRepository using PostgreSQL.
type FileRepo struct{ db *DB }

// NewFileRepo constructs a file metadata repository.
func NewFileRepo(db *DB) *FileRepo { return &FileRepo{db: db} }

// Create inserts a new file record. The unique index on (owner, filename)
// arbitrates concurrent uploads of the same name: exactly one insert wins.
func (r *FileRepo) Create(ctx context.Context, rec *model.FileRecord) error {
	const q = `
INSERT INTO files (id, owner, filename, content_type, storage_key)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, rec.ID, rec.Owner, rec.Filename, rec.ContentType, rec.StorageKey)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateFilename
	}
	return err
}

// Exists reports whether the owner already has a file with that name.
func (r *FileRepo) Exists(ctx context.Context, owner, filename string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM files WHERE owner=$1 AND filename=$2)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, owner, filename).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetByOwnerAndFilename selects a single record for an owner.
func (r *FileRepo) GetByOwnerAndFilename(ctx context.Context, owner, filename string) (*model.FileRecord, error) {
	const q = `
SELECT id, owner, filename, content_type, storage_key, created_at
FROM files WHERE owner=$1 AND filename=$2`
	return scanRecord(r.db.Pool.QueryRow(ctx, q, owner, filename))
}

// GetByID selects a record by id regardless of owner. Callers enforce ownership.
func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error) {
	const q = `
SELECT id, owner, filename, content_type, storage_key, created_at
FROM files WHERE id=$1`
	return scanRecord(r.db.Pool.QueryRow(ctx, q, id))
}

// ListByOwner returns all records for an owner in creation order.
func (r *FileRepo) ListByOwner(ctx context.Context, owner string) ([]model.FileRecord, error) {
	const q = `
SELECT id, owner, filename, content_type, storage_key, created_at
FROM files WHERE owner=$1 ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FileRecord
	for rows.Next() {
		var rec model.FileRecord
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Filename, &rec.ContentType, &rec.StorageKey, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a record by id.
func (r *FileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM files WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*model.FileRecord, error) {
	var rec model.FileRecord
	if err := row.Scan(&rec.ID, &rec.Owner, &rec.Filename, &rec.ContentType, &rec.StorageKey, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
