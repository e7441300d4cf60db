// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"photovault/internal/model"
)

// AccountRepository persists accounts keyed by username.
type AccountRepository interface {
	// Create inserts a new account. Returns errs.ErrDuplicateAccount if the
	// username is taken; uniqueness is arbitrated by the storage layer so
	// concurrent creates yield exactly one winner.
	Create(ctx context.Context, a *model.Account) error
	// GetByUsername loads an account by username.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
}
