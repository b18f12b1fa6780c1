package keystore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := []byte("master-key")
	value := []byte("postgres://svc:hunter2@db/prod")

	e, err := Seal("prod_dsn", value, key)
	require.NoError(t, err)

	assert.Equal(t, "prod_dsn", e.Name)
	assert.Len(t, e.IV, 4)
	assert.NotEmpty(t, e.KeyFingerprint)
	assert.NotEqual(t, value, e.Value, "sealed value must not equal plaintext")

	got, err := Open(e, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestSealFreshIVPerCall(t *testing.T) {
	key := []byte("master-key")
	value := []byte("same value")

	a, err := Seal("s", value, key)
	require.NoError(t, err)
	b, err := Seal("s", value, key)
	require.NoError(t, err)

	// Random IVs make repeated seals of the same plaintext diverge.
	assert.NotEqual(t, a.IV, b.IV)
	assert.False(t, bytes.Equal(a.Value, b.Value), "two seals produced identical ciphertext")
}

func TestOpenWrongKey(t *testing.T) {
	e, err := Seal("s", []byte("value"), []byte("right-key"))
	require.NoError(t, err)

	_, err = Open(e, []byte("wrong-key"))
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestSealValidation(t *testing.T) {
	key := []byte("k")

	_, err := Seal("", []byte("v"), key)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = Seal("has space", []byte("v"), key)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = Seal(strings.Repeat("n", MaxNameLen+1), []byte("v"), key)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = Seal("big", make([]byte, MaxValueLen+1), key)
	assert.ErrorIs(t, err, ErrValueTooLarge)

	_, err = Seal("ok", []byte("v"), nil)
	assert.Error(t, err, "empty key must be rejected by the cipher")
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "A-Z_09", strings.Repeat("x", MaxNameLen)} {
		assert.NoError(t, ValidateName(ok), ok)
	}
	for _, bad := range []string{"", "a b", "a/b", "a.b", "ключ", strings.Repeat("x", MaxNameLen+1)} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}

func TestFingerprintStable(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("k")), Fingerprint([]byte("k")))
	assert.NotEqual(t, Fingerprint([]byte("k")), Fingerprint([]byte("l")))
	assert.Len(t, Fingerprint([]byte("k")), 16)
}
