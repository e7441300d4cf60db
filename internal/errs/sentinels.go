// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAccount indicates the username is already taken.
	ErrDuplicateAccount = errors.New("username already exists")

	// ErrDuplicateFilename indicates the owner already has a file with that name.
	ErrDuplicateFilename = errors.New("filename already exists")

	// ErrForbidden indicates an ownership mismatch on a protected resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAuthFailed indicates the verification candidate did not match the stored secret.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidToken indicates an expired, forged, or malformed session token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRateLimited indicates a temporary verify lockout due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation")
)
