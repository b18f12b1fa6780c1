// Package arc4 implements a modified RC4 stream cipher that combines the
// dual S-block design of RC4A with the nonlinear output combination of RC4+.
//
// Unlike classical RC4, the two 256-byte S-blocks do not start from the
// identity permutation: each is filled by a linear congruential generator
// seeded from a 4-byte IV (the second S-block from a shifted and rotated
// copy of the same IV), then keyed by the usual KSA swaps and warmed up
// with 256 discarded PRGA steps. Per output byte, both generators advance
// one step and their bytes are combined as
//
//	k = (k1 + k2) ^ ((k1 << 5) | (k2 >> 3))
//
// before being XORed with the data. Encryption and decryption are the same
// operation under the same key/IV pair.
//
// A Cipher instance is NOT safe for concurrent use: every call advances the
// shared S-block state. Use one instance per stream, or external locking.
// Reusing a key/IV pair for two messages regenerates the same keystream and
// breaks confidentiality — the caller must keep IVs unique per key.
package arc4

import (
	"crypto/cipher"
	"errors"
	"fmt"
)

// IVSize is the required initialization vector length in bytes.
const IVSize = 4

var (
	// ErrEmptyKey is returned by New when the key is nil or empty.
	ErrEmptyKey = errors.New("arc4: key must not be empty")
	// ErrInvalidIV is returned by New when the IV is not exactly 4 bytes.
	ErrInvalidIV = errors.New("arc4: iv must be exactly 4 bytes")
	// ErrOutOfRange is returned when an offset/count pair would read or
	// write outside the supplied buffers. The cipher state is left
	// untouched in that case.
	ErrOutOfRange = errors.New("arc4: offset or count out of range")
	// ErrDisposed is returned when a transform is attempted after Dispose.
	ErrDisposed = errors.New("arc4: cipher is disposed")
)

// Cipher is a single keystream instance built from a key and a 4-byte IV.
type Cipher struct {
	s1, s2   generator
	disposed bool
}

var _ cipher.Stream = (*Cipher)(nil)

// New creates a Cipher from the given key and 4-byte IV.
// The key may be any non-zero length; it is consumed during scheduling and
// no reference to it (or to the IV) is kept.
func New(key, iv []byte) (*Cipher, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidIV, len(iv))
	}

	c := &Cipher{}
	c.s1.seed([IVSize]byte(iv))
	c.s2.seed(deriveSecondIV([IVSize]byte(iv)))
	c.s1.schedule(key)
	c.s2.schedule(key)
	return c, nil
}

// deriveSecondIV builds the seed for the second S-block: add 128 to every
// byte, then rotate the 4-byte array left by one position. This keeps the
// two S-blocks seeded from related but distinct values without requiring a
// second IV from the caller.
func deriveSecondIV(iv [IVSize]byte) [IVSize]byte {
	var d [IVSize]byte
	for i, b := range iv {
		d[i] = b + 128
	}
	d[0], d[1], d[2], d[3] = d[1], d[2], d[3], d[0]
	return d
}

// TransformBlock transforms count bytes from input starting at inputOffset
// into output starting at outputOffset and returns the number of bytes
// written. Input and output may be the same slice (in-place use).
// All validation happens before the first keystream byte is generated, so a
// failed call leaves the cipher exactly as it was.
func (c *Cipher) TransformBlock(input []byte, inputOffset, count int, output []byte, outputOffset int) (int, error) {
	if c.disposed {
		return 0, ErrDisposed
	}
	if inputOffset < 0 || count < 0 || inputOffset+count > len(input) {
		return 0, fmt.Errorf("%w: input offset %d count %d for buffer of %d",
			ErrOutOfRange, inputOffset, count, len(input))
	}
	if outputOffset < 0 || outputOffset+count > len(output) {
		return 0, fmt.Errorf("%w: output offset %d count %d for buffer of %d",
			ErrOutOfRange, outputOffset, count, len(output))
	}

	c.xor(output[outputOffset:outputOffset+count], input[inputOffset:inputOffset+count])
	return count, nil
}

// TransformFinalBlock transforms count bytes from input starting at
// inputOffset and returns them in a freshly allocated buffer.
func (c *Cipher) TransformFinalBlock(input []byte, inputOffset, count int) ([]byte, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	if inputOffset < 0 || count < 0 || inputOffset+count > len(input) {
		return nil, fmt.Errorf("%w: input offset %d count %d for buffer of %d",
			ErrOutOfRange, inputOffset, count, len(input))
	}

	out := make([]byte, count)
	c.xor(out, input[inputOffset:inputOffset+count])
	return out, nil
}

// XORKeyStream implements crypto/cipher.Stream. Dst and src must overlap
// entirely or not at all. Panics if len(dst) < len(src) or if the cipher
// has been disposed, mirroring the stdlib Stream contract.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("arc4: output smaller than input")
	}
	if c.disposed {
		panic("arc4: use of disposed cipher")
	}
	c.xor(dst[:len(src)], src)
}

// xor advances both generators one step per byte and XORs the combined
// keystream byte into dst. len(dst) == len(src) is the caller's invariant.
func (c *Cipher) xor(dst, src []byte) {
	for i, b := range src {
		k1 := c.s1.next()
		k2 := c.s2.next()
		k := (k1 + k2) ^ ((k1 << 5) | (k2 >> 3))
		dst[i] = b ^ k
	}
}

// Dispose zeroes both S-blocks and all running indices so no key-derived
// permutation state stays resident. Idempotent; any transform after
// Dispose fails with ErrDisposed.
func (c *Cipher) Dispose() {
	if c.disposed {
		return
	}
	c.s1.reset()
	c.s2.reset()
	c.disposed = true
}
