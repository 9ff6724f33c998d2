// Package zlibcodec provides a zlib-deflate compression codec (scheme 2),
// the scheme current game versions write by default.
package zlibcodec

import (
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/regionfile"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

func init() {
	codec.Register(New())
}

// Codec implements zlib compression.
type Codec struct{}

// New returns a new zlib codec.
func New() *Codec {
	return &Codec{}
}

// Reader wraps r to decompress zlib data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

// Writer wraps w to compress data with zlib.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zlib.NewWriter(w), nil
}

// Scheme returns the region scheme byte for zlib.
func (c *Codec) Scheme() byte {
	return regionfile.SchemeZlib
}
