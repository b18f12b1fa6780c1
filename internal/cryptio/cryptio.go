// Package cryptio streams data through a stream cipher in fixed-size
// chunks. The cipher's state continuation guarantees that chunked output
// matches a one-shot transform of the same bytes.
package cryptio

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is used when the caller passes a non-positive chunk size.
const DefaultChunkSize = 64 * 1024

// Copy reads src to EOF, XORs each chunk through stream in place, and
// writes the transformed bytes to dst. Returns the number of bytes written.
func Copy(dst io.Writer, src io.Reader, stream cipher.Stream, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			stream.XORKeyStream(buf[:n], buf[:n])
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, fmt.Errorf("writing transformed chunk: %w", werr)
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			return written, fmt.Errorf("reading chunk: %w", rerr)
		}
	}
}
