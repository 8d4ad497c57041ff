package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	require.Equal(t, key1, key2)
	assert.Equal(t, "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39", hex.EncodeToString(key1))
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	assert.NotEqual(t, DeriveKey(password, []byte("salt-1")), DeriveKey(password, []byte("salt-2")))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	plain := []byte(`{"users":[],"sessions":[],"version":"1.0.0"}`)
	pass := []byte("correct horse")

	sealed, err := Seal(plain, pass)
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, string(sealed), "sessions")

	got, err := Open(sealed, pass)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSeal_FreshSaltEachTime(t *testing.T) {
	a, err := Seal([]byte("x"), []byte("p"))
	require.NoError(t, err)
	b, err := Seal([]byte("x"), []byte("p"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_Errors(t *testing.T) {
	sealed, err := Seal([]byte("payload"), []byte("right"))
	require.NoError(t, err)

	_, err = Open(sealed, []byte("wrong"))
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	_, err = Open([]byte(`{"users":[]}`), []byte("right"))
	assert.ErrorIs(t, err, ErrNotSealed)

	_, err = Open(sealed[:10], []byte("right"))
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = Open(tampered, []byte("right"))
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestRandomHexAndWipe(t *testing.T) {
	s, err := RandomHex(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	b := []byte{1, 2, 3}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	Wipe(nil)
}
