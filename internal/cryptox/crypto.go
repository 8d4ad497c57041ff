// Package cryptox seals backup bundles with a passphrase.
//
// A sealed blob has the layout
//
//	magic(4) | salt(16) | nonce(12) | AES-256-GCM ciphertext
//
// where the key is derived from the passphrase with argon2id.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

var magic = []byte("PBK1")

var (
	ErrNotSealed       = errors.New("data is not sealed")
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted data")
)

// DeriveKey stretches a passphrase into a 32-byte AES key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// RandomHex returns 2*n hex characters built from n random bytes.
func RandomHex(n int) (string, error) {
	b, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Wipe zeroes b in place. Nil is allowed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// IsSealed reports whether data starts with the sealed-blob magic.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Seal encrypts plaintext with a key derived from passphrase. Every call uses
// a fresh salt and nonce, so sealing the same input twice gives different output.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	salt, err := RandomBytes(saltSize)
	if err != nil {
		return nil, err
	}
	nonce, err := RandomBytes(nonceSize)
	if err != nil {
		return nil, err
	}

	key := DeriveKey(passphrase, salt)
	defer Wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(magic)+saltSize+nonceSize+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. It returns ErrNotSealed for data without the magic
// prefix and ErrWrongPassphrase when authentication fails.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrNotSealed
	}
	rest := sealed[len(magic):]
	if len(rest) < saltSize+nonceSize {
		return nil, ErrWrongPassphrase
	}
	salt, nonce, ciphertext := rest[:saltSize], rest[saltSize:saltSize+nonceSize], rest[saltSize+nonceSize:]

	key := DeriveKey(passphrase, salt)
	defer Wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
