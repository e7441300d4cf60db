package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"photovault/internal/model"
	"photovault/internal/storage"
)

// PhotoService scopes file store operations to the caller's identity. The
// identity is supplied by the request gate after token validation; this
// service never sees raw tokens.
type PhotoService interface {
	// Upload stores an encrypted photo under the owner's namespace.
	Upload(ctx context.Context, owner, filename, contentType string, content []byte) (uuid.UUID, error)
	// List returns the owner's file records.
	List(ctx context.Context, owner string) ([]model.FileRecord, error)
	// Download returns the raw stored bytes of the owner's file.
	Download(ctx context.Context, owner, filename string) ([]byte, error)
	// Delete removes the owner's file by record id.
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}

type PhotoServiceImpl struct {
	store *storage.FileStore
}

// NewPhotoService constructs PhotoService over a file store.
func NewPhotoService(store *storage.FileStore) *PhotoServiceImpl {
	return &PhotoServiceImpl{store: store}
}

func (s *PhotoServiceImpl) Upload(ctx context.Context, owner, filename, contentType string, content []byte) (uuid.UUID, error) {
	return s.store.Put(ctx, owner, filename, contentType, content)
}

func (s *PhotoServiceImpl) List(ctx context.Context, owner string) ([]model.FileRecord, error) {
	return s.store.List(ctx, owner)
}

func (s *PhotoServiceImpl) Download(ctx context.Context, owner, filename string) ([]byte, error) {
	return s.store.Get(ctx, owner, filename)
}

func (s *PhotoServiceImpl) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	return s.store.Delete(ctx, owner, id)
}
