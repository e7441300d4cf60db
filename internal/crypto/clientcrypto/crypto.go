// Package clientcrypto contains client-side primitives for key derivation and
// authenticated encryption. The server never calls into this package; it is
// used by the CLI client and mirrors the envelope format of the web client:
// base64(salt | nonce | ciphertext) with PBKDF2-SHA256 key derivation.
package clientcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// Params
const (
	KeyLen     = 32     // AES-256
	SaltLen    = 16     // PBKDF2 salt
	NonceLen   = 12     // GCM standard nonce
	Iterations = 600000 // PBKDF2-SHA256 rounds
)

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives an AES-256 key from a password and salt using PBKDF2-SHA256.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, KeyLen, sha256.New)
}

// GenerateUserKeys produces fresh base64-encoded master and verification keys.
func GenerateUserKeys() (masterKey, verificationKey string, err error) {
	mk, err := Rand(KeyLen)
	if err != nil {
		return "", "", err
	}
	vk, err := Rand(KeyLen)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(mk), base64.StdEncoding.EncodeToString(vk), nil
}

// EncryptWithPassword seals plaintext under a password-derived key and returns
// base64(salt | nonce | ciphertext).
func EncryptWithPassword(plaintext, password []byte) (string, error) {
	salt, err := Rand(SaltLen)
	if err != nil {
		return "", err
	}
	nonce, err := Rand(NonceLen)
	if err != nil {
		return "", err
	}
	aead, err := newGCM(DeriveKey(password, salt))
	if err != nil {
		return "", err
	}
	out := make([]byte, 0, SaltLen+NonceLen+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, nil)...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptWithPassword opens a base64(salt | nonce | ciphertext) envelope.
func DecryptWithPassword(envelope string, password []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, errors.New("malformed envelope")
	}
	if len(raw) < SaltLen+NonceLen {
		return nil, errors.New("envelope too short")
	}
	salt, nonce, ct := raw[:SaltLen], raw[SaltLen:SaltLen+NonceLen], raw[SaltLen+NonceLen:]
	aead, err := newGCM(DeriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ct, nil)
}

// EncryptFile seals file content under the raw master key and returns
// nonce | ciphertext, self-contained for upload.
func EncryptFile(masterKey, content []byte) ([]byte, error) {
	aead, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(NonceLen)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, NonceLen+len(content)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, content, nil)...)
	return out, nil
}

// DecryptFile opens a nonce | ciphertext blob produced by EncryptFile.
func DecryptFile(masterKey, blob []byte) ([]byte, error) {
	if len(blob) < NonceLen {
		return nil, errors.New("blob too short")
	}
	aead, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, blob[:NonceLen], blob[NonceLen:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
