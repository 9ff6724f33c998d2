// Package gzipcodec provides a gzip compression codec (scheme 1).
package gzipcodec

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/regionfile"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

func init() {
	codec.Register(New())
}

// Codec implements gzip compression.
type Codec struct{}

// New returns a new gzip codec.
func New() *Codec {
	return &Codec{}
}

// Reader wraps r to decompress gzip data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer wraps w to compress data with gzip.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Scheme returns the region scheme byte for gzip.
func (c *Codec) Scheme() byte {
	return regionfile.SchemeGZip
}
