package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"photovault/internal/errs"
	"photovault/internal/limiter"
	"photovault/internal/model"
	"photovault/internal/repository"
	"photovault/internal/token"
)

type fakeAccounts struct {
	byName map[string]*model.Account

	createErr error
	getErr    error
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.Account{}
	}
	if _, exists := f.byName[a.Username]; exists {
		return errs.ErrDuplicateAccount
	}
	cpy := *a
	f.byName[a.Username] = &cpy
	return nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func testTokens(t *testing.T) *token.Service {
	t.Helper()
	tk, err := token.New([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return tk
}

func signupAlice(t *testing.T, s AuthService) {
	t.Helper()
	err := s.Signup(context.Background(), "alice", "alice@example.com",
		model.EncryptedBlob("enc-master"), model.EncryptedBlob("enc-verify"), []byte("the-secret"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
}

func TestAuth_Signup_ValidationAndDuplicate(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byName: map[string]*model.Account{}}
	s := NewAuthService(accounts, testTokens(t), &fakeLimiter{allowOK: true})
	ctx := context.Background()

	cases := []struct {
		name                  string
		username, email       string
		encMK, encVK          model.EncryptedBlob
		secret                []byte
	}{
		{"empty username", "", "e@x", model.EncryptedBlob("m"), model.EncryptedBlob("v"), []byte("s")},
		{"empty email", "u", "", model.EncryptedBlob("m"), model.EncryptedBlob("v"), []byte("s")},
		{"empty master key", "u", "e@x", nil, model.EncryptedBlob("v"), []byte("s")},
		{"empty verification key", "u", "e@x", model.EncryptedBlob("m"), nil, []byte("s")},
		{"empty secret", "u", "e@x", model.EncryptedBlob("m"), model.EncryptedBlob("v"), nil},
	}
	for _, tc := range cases {
		err := s.Signup(ctx, tc.username, tc.email, tc.encMK, tc.encVK, tc.secret)
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%s: want ErrValidation, got %v", tc.name, err)
		}
	}

	signupAlice(t, s)

	err := s.Signup(ctx, "alice", "other@example.com",
		model.EncryptedBlob("m2"), model.EncryptedBlob("v2"), []byte("s2"))
	if !errors.Is(err, errs.ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
}

func TestAuth_Signin_ReturnsStoredBlobs(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byName: map[string]*model.Account{}}
	s := NewAuthService(accounts, testTokens(t), &fakeLimiter{allowOK: true})
	ctx := context.Background()
	signupAlice(t, s)

	mk, vk, err := s.Signin(ctx, "alice")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if !bytes.Equal(mk, []byte("enc-master")) || !bytes.Equal(vk, []byte("enc-verify")) {
		t.Fatalf("blobs do not match stored values: %q %q", mk, vk)
	}

	if _, _, err := s.Signin(ctx, "nobody"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown account, got %v", err)
	}
	if _, _, err := s.Signin(ctx, ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation for empty username, got %v", err)
	}
}

func TestAuth_Verify_MatchIssuesToken(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byName: map[string]*model.Account{}}
	tokens := testTokens(t)
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(accounts, tokens, lim)
	ctx := context.Background()
	signupAlice(t, s)

	sess, err := s.VerifyWithIP(ctx, "alice", []byte("the-secret"), "10.0.0.1")
	if err != nil {
		t.Fatalf("VerifyWithIP: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("no token issued")
	}
	sub, err := tokens.Validate(sess.Token)
	if err != nil || sub != "alice" {
		t.Fatalf("issued token invalid: sub=%q err=%v", sub, err)
	}
	if lim.successCalls != 1 {
		t.Fatalf("limiter success not recorded")
	}
}

func TestAuth_Verify_MismatchAndUnknownLookAlike(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byName: map[string]*model.Account{}}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(accounts, testTokens(t), lim)
	ctx := context.Background()
	signupAlice(t, s)

	// wrong secret
	sess, err := s.VerifyWithIP(ctx, "alice", []byte("the-secreT"), "10.0.0.1")
	if !errors.Is(err, errs.ErrAuthFailed) {
		t.Fatalf("want ErrAuthFailed for wrong secret, got %v", err)
	}
	if sess.Token != "" {
		t.Fatalf("token issued on mismatch")
	}

	// wrong length
	if _, err := s.VerifyWithIP(ctx, "alice", []byte("the-secret!"), "10.0.0.1"); !errors.Is(err, errs.ErrAuthFailed) {
		t.Fatalf("want ErrAuthFailed for wrong length, got %v", err)
	}

	// unknown username: indistinguishable from wrong secret
	if _, err := s.VerifyWithIP(ctx, "nobody", []byte("anything"), "10.0.0.1"); !errors.Is(err, errs.ErrAuthFailed) {
		t.Fatalf("want ErrAuthFailed for unknown username, got %v", err)
	}

	if lim.failureCalls != 3 {
		t.Fatalf("failureCalls=%d, want 3", lim.failureCalls)
	}
}

func TestAuth_Verify_RateLimiting(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byName: map[string]*model.Account{}}
	lim := &fakeLimiter{allowOK: false}
	s := NewAuthService(accounts, testTokens(t), lim)
	ctx := context.Background()
	signupAlice(t, s)

	// blocked before any lookup
	if _, err := s.VerifyWithIP(ctx, "alice", []byte("the-secret"), "10.0.0.1"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}

	// failure that trips the threshold reports rate limited, not auth failed
	lim.allowOK = true
	lim.failBlocked = true
	if _, err := s.VerifyWithIP(ctx, "alice", []byte("wrong-secret"), "10.0.0.1"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on threshold, got %v", err)
	}
}

func TestAuth_Verify_RepoErrorPropagates(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	accounts := &fakeAccounts{getErr: boom}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(accounts, testTokens(t), lim)

	if _, err := s.VerifyWithIP(context.Background(), "alice", []byte("x"), "10.0.0.1"); !errors.Is(err, boom) {
		t.Fatalf("want storage error to propagate, got %v", err)
	}
	// storage flakiness is not an attempt; the limit budget stays intact
	if lim.failureCalls != 0 {
		t.Fatalf("failureCalls=%d, want 0 on infrastructure error", lim.failureCalls)
	}
}
