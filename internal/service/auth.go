// Package service contains application services for authentication and photos.
package service

import (
	"context"
	"errors"
	"fmt"

	"photovault/internal/crypto"
	"photovault/internal/errs"
	"photovault/internal/limiter"
	"photovault/internal/model"
	"photovault/internal/repository"
	"photovault/internal/token"
)

// AuthService defines the two-phase challenge-response login protocol.
// There is no server-side state between Signin and Verify; the client holds
// the decrypted material and independently supplies the candidate secret.
type AuthService interface {
	// Signup creates a new account.
	Signup(ctx context.Context, username, email string, encMasterKey, encVerificationKey model.EncryptedBlob, verificationSecret []byte) error
	// Signin hands the client its own encrypted key material. No secret
	// comparison happens here.
	Signin(ctx context.Context, username string) (encMasterKey, encVerificationKey model.EncryptedBlob, err error)
	// VerifyWithIP applies rate limiting, compares the candidate against the
	// stored verification secret in constant time, and issues a session token
	// on match.
	VerifyWithIP(ctx context.Context, username string, candidate []byte, ip string) (model.Session, error)
}

type AuthServiceImpl struct {
	accounts repository.AccountRepository
	tokens   *token.Service
	lim      limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(accounts repository.AccountRepository, tokens *token.Service, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{accounts: accounts, tokens: tokens, lim: lim}
}

// Signup validates required fields and delegates to the account repository,
// which arbitrates username uniqueness.
func (s *AuthServiceImpl) Signup(ctx context.Context, username, email string, encMasterKey, encVerificationKey model.EncryptedBlob, verificationSecret []byte) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: empty username", errs.ErrValidation)
	case email == "":
		return fmt.Errorf("%w: empty email", errs.ErrValidation)
	case len(encMasterKey) == 0:
		return fmt.Errorf("%w: empty encrypted master key", errs.ErrValidation)
	case len(encVerificationKey) == 0:
		return fmt.Errorf("%w: empty encrypted verification key", errs.ErrValidation)
	case len(verificationSecret) == 0:
		return fmt.Errorf("%w: empty verification secret", errs.ErrValidation)
	}
	return s.accounts.Create(ctx, &model.Account{
		Username:           username,
		Email:              email,
		EncMasterKey:       encMasterKey,
		EncVerificationKey: encVerificationKey,
		VerificationSecret: verificationSecret,
	})
}

// Signin returns the stored encrypted blobs for the account.
func (s *AuthServiceImpl) Signin(ctx context.Context, username string) (model.EncryptedBlob, model.EncryptedBlob, error) {
	if username == "" {
		return nil, nil, fmt.Errorf("%w: empty username", errs.ErrValidation)
	}
	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	return a.EncMasterKey, a.EncVerificationKey, nil
}

// VerifyWithIP authenticates phase two with rate limiting by (username, ip).
// An unknown username is reported exactly like a wrong secret so the response
// shape cannot be used to enumerate accounts.
func (s *AuthServiceImpl) VerifyWithIP(ctx context.Context, username string, candidate []byte, ip string) (model.Session, error) {
	if username == "" || len(candidate) == 0 {
		return model.Session{}, fmt.Errorf("%w: empty username/candidate", errs.ErrValidation)
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Session{}, err
	}
	if !allowed {
		return model.Session{}, errs.ErrRateLimited
	}

	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		// infrastructure failure: not the caller's attempt, so no limiter hit
		return model.Session{}, err
	}
	if err != nil || !crypto.SecretEqual(a.VerificationSecret, candidate) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Session{}, errs.ErrRateLimited
		}
		// unknown account and mismatched secret are indistinguishable
		return model.Session{}, errs.ErrAuthFailed
	}

	_ = s.lim.Success(ctx, username, ipHash)

	tok, exp, err := s.tokens.Issue(username)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: tok, ExpiresAt: exp}, nil
}
