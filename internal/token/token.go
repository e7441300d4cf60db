// Package token issues and validates signed, time-limited session tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"photovault/internal/errs"
)

// MinKeyLen is the minimum signing key size in bytes (256 bits).
const MinKeyLen = 32

// Service signs and validates HS256 session tokens bound to a username.
// The signing key and TTL are fixed at construction; there is no rotation
// and no revocation, a token is trusted until natural expiry.
type Service struct {
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// New constructs a token service. The key must carry at least 256 bits.
func New(signKey []byte, ttl time.Duration) (*Service, error) {
	if len(signKey) < MinKeyLen {
		return nil, errors.New("signing key shorter than 256 bits")
	}
	if ttl <= 0 {
		return nil, errors.New("non-positive token ttl")
	}
	return &Service{signKey: signKey, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source; used by tests for deterministic expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue creates a signed token for subject with iat=now and exp=now+TTL.
func (s *Service) Issue(subject string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// Validate verifies signature and expiry and returns the subject. Expiry is
// exact: no clock-skew leeway is granted.
func (s *Service) Validate(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", errs.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return "", errs.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", errs.ErrInvalidToken
	}
	return claims.Subject, nil
}
