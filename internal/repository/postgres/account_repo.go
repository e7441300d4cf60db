package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"photovault/internal/errs"
	"photovault/internal/model"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row. The unique constraint on username makes
// concurrent signups race-safe: the second insert fails with 23505.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO accounts (username, email, enc_master_key, enc_verification_key, verification_secret)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, a.Username, a.Email, []byte(a.EncMasterKey), []byte(a.EncVerificationKey), a.VerificationSecret)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateAccount
	}
	return err
}

// GetByUsername selects an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `
SELECT username, email, enc_master_key, enc_verification_key, verification_secret, created_at
FROM accounts WHERE username=$1`
	row := r.db.Pool.QueryRow(ctx, q, username)
	var a model.Account
	if err := row.Scan(&a.Username, &a.Email, (*[]byte)(&a.EncMasterKey), (*[]byte)(&a.EncVerificationKey), &a.VerificationSecret, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
