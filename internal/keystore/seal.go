package keystore

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/udisondev/arcrypt/internal/arc4"
)

// ErrKeyMismatch is returned by Open when the entry was sealed with a
// different key than the one supplied.
var ErrKeyMismatch = errors.New("keystore: entry was sealed with a different key")

// Fingerprint identifies a secret key for display and wrong-key detection:
// the first 8 bytes of SHA3-256(key), hex encoded. It is never used to
// derive key material.
func Fingerprint(key []byte) string {
	sum := sha3.Sum256(key)
	return hex.EncodeToString(sum[:8])
}

// Seal encrypts value under key with a fresh random 4-byte IV and returns
// the Entry ready for Store.Put.
func Seal(name string, value, key []byte) (Entry, error) {
	if err := ValidateName(name); err != nil {
		return Entry{}, err
	}
	if len(value) > MaxValueLen {
		return Entry{}, fmt.Errorf("%w: got %d", ErrValueTooLarge, len(value))
	}

	iv := make([]byte, arc4.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return Entry{}, fmt.Errorf("generating iv: %w", err)
	}

	c, err := arc4.New(key, iv)
	if err != nil {
		return Entry{}, fmt.Errorf("creating cipher: %w", err)
	}
	defer c.Dispose()

	ct, err := c.TransformFinalBlock(value, 0, len(value))
	if err != nil {
		return Entry{}, fmt.Errorf("sealing value: %w", err)
	}

	return Entry{
		Name:           name,
		Value:          ct,
		IV:             iv,
		KeyFingerprint: Fingerprint(key),
	}, nil
}

// Open decrypts the entry's value with key. Fails with ErrKeyMismatch
// before touching the ciphertext when the fingerprint does not match.
func Open(e Entry, key []byte) ([]byte, error) {
	if fp := Fingerprint(key); fp != e.KeyFingerprint {
		return nil, fmt.Errorf("%w: entry sealed by %s, supplied key is %s",
			ErrKeyMismatch, e.KeyFingerprint, fp)
	}

	c, err := arc4.New(key, e.IV)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	defer c.Dispose()

	pt, err := c.TransformFinalBlock(e.Value, 0, len(e.Value))
	if err != nil {
		return nil, fmt.Errorf("opening value: %w", err)
	}
	return pt, nil
}
