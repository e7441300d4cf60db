package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"photovault/internal/errs"
	"photovault/internal/model"
)

const fileCols = `id, owner, filename, content_type, storage_key, created_at`

func sampleRecord() *model.FileRecord {
	return &model.FileRecord{
		ID:          uuid.Must(uuid.NewV4()),
		Owner:       "alice",
		Filename:    "a.png",
		ContentType: "image/png",
		StorageKey:  "alice/a.png",
	}
}

func TestFileRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFileRepo(db)
	ctx := context.Background()
	rec := sampleRecord()

	mock.ExpectExec(`INSERT INTO files \(id, owner, filename, content_type, storage_key\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(rec.ID, rec.Owner, rec.Filename, rec.ContentType, rec.StorageKey).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, rec))

	mock.ExpectExec(`INSERT INTO files \(id, owner, filename, content_type, storage_key\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(rec.ID, rec.Owner, rec.Filename, rec.ContentType, rec.StorageKey).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, rec), errs.ErrDuplicateFilename)
}

func TestFileRepo_Exists(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFileRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM files WHERE owner=\$1 AND filename=\$2\)`).
		WithArgs("alice", "a.png").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := r.Exists(ctx, "alice", "a.png")
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM files WHERE owner=\$1 AND filename=\$2\)`).
		WithArgs("alice", "b.png").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err = r.Exists(ctx, "alice", "b.png")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileRepo_GetByID_and_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFileRepo(db)
	ctx := context.Background()
	rec := sampleRecord()

	mock.ExpectQuery(`SELECT ` + fileCols + ` FROM files WHERE id=\$1`).
		WithArgs(rec.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "filename", "content_type", "storage_key", "created_at"}).
			AddRow(rec.ID, rec.Owner, rec.Filename, rec.ContentType, rec.StorageKey, time.Now()))
	got, err := r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Owner, got.Owner)
	require.Equal(t, rec.StorageKey, got.StorageKey)

	mock.ExpectQuery(`SELECT ` + fileCols + ` FROM files WHERE id=\$1`).
		WithArgs(rec.ID).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, rec.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// infrastructure failures are not "not found"
	connErr := errors.New("conn closed")
	mock.ExpectQuery(`SELECT ` + fileCols + ` FROM files WHERE id=\$1`).
		WithArgs(rec.ID).
		WillReturnError(connErr)
	_, err = r.GetByID(ctx, rec.ID)
	require.ErrorIs(t, err, connErr)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestFileRepo_ListByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFileRepo(db)
	ctx := context.Background()
	id1 := uuid.Must(uuid.NewV4())
	id2 := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT `+fileCols+` FROM files WHERE owner=\$1 ORDER BY created_at, id`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "filename", "content_type", "storage_key", "created_at"}).
			AddRow(id1, "alice", "a.png", "image/png", "alice/a.png", time.Now()).
			AddRow(id2, "alice", "b.png", "image/png", "alice/b.png", time.Now()))
	recs, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "a.png", recs[0].Filename)
	require.Equal(t, "b.png", recs[1].Filename)
}

func TestFileRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFileRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM files WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, id))

	mock.ExpectExec(`DELETE FROM files WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, id), errs.ErrNotFound)
}
