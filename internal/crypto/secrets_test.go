package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) returned equal output", n)
	}
}

func TestSecretEqual(t *testing.T) {
	t.Parallel()

	secret := []byte("correct-verification-key-material")

	if !SecretEqual(secret, []byte("correct-verification-key-material")) {
		t.Fatalf("equal secrets reported unequal")
	}

	// single differing byte, at start and at end
	first := append([]byte(nil), secret...)
	first[0] ^= 1
	if SecretEqual(secret, first) {
		t.Fatalf("mismatch at first byte reported equal")
	}
	last := append([]byte(nil), secret...)
	last[len(last)-1] ^= 1
	if SecretEqual(secret, last) {
		t.Fatalf("mismatch at last byte reported equal")
	}

	// differing length is an immediate mismatch
	if SecretEqual(secret, secret[:len(secret)-1]) {
		t.Fatalf("shorter candidate reported equal")
	}
	if SecretEqual(secret, append(append([]byte(nil), secret...), 'x')) {
		t.Fatalf("longer candidate reported equal")
	}

	// case sensitivity
	if SecretEqual([]byte("Secret"), []byte("secret")) {
		t.Fatalf("comparison is not case-sensitive")
	}

	if !SecretEqual([]byte{}, []byte{}) {
		t.Fatalf("two empty secrets should compare equal")
	}
}
