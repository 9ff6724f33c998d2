// Package codec provides compression and decompression for chunk payloads.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrDecompression indicates a malformed compressed stream.
var ErrDecompression = errors.New("codec: decompression failed")

// ErrUnknownScheme indicates a compression scheme byte this package
// cannot handle. Callers carry such payloads through untouched.
var ErrUnknownScheme = errors.New("codec: unknown compression scheme")

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Scheme returns the on-disk compression scheme byte.
	Scheme() byte
}

// registry maps scheme bytes to codecs, populated by the codec
// subpackages from their init functions.
var registry = map[byte]Codec{}

// Register makes a codec available to ForScheme.
func Register(c Codec) {
	registry[c.Scheme()] = c
}

// ForScheme returns the codec for a scheme byte.
func ForScheme(scheme byte) (Codec, bool) {
	c, ok := registry[scheme]
	return c, ok
}

// Decompress inflates a full payload under the given scheme.
func Decompress(scheme byte, data []byte) ([]byte, error) {
	c, ok := ForScheme(scheme)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, scheme)
	}

	r, err := c.Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return out, nil
}

// Compress deflates data under the given scheme. The scheme is always the
// one the chunk originally used; payloads never switch schemes silently.
func Compress(scheme byte, data []byte) ([]byte, error) {
	c, ok := ForScheme(scheme)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, scheme)
	}

	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing compressor: %w", err)
	}
	return buf.Bytes(), nil
}
