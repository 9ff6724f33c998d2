// Package nocompcodec provides the uncompressed passthrough codec (scheme 3).
package nocompcodec

import (
	"io"

	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/regionfile"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

func init() {
	codec.Register(New())
}

// Codec implements no compression.
type Codec struct{}

// New returns a new passthrough codec.
func New() *Codec {
	return &Codec{}
}

// Reader returns r wrapped as a ReadCloser (no decompression).
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(r), nil
}

// Writer returns w wrapped as a WriteCloser (no compression).
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc, nil
	}
	return &nopWriteCloser{w}, nil
}

// Scheme returns the region scheme byte for uncompressed payloads.
func (c *Codec) Scheme() byte {
	return regionfile.SchemeNone
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
