// Package worldstore defines the storage backend interface for reading
// and writing region files.
package worldstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a region file does not exist in the store.
var ErrNotFound = errors.New("worldstore: region not found")

// Store defines the interface for storage backends holding region files.
// Implementations handle path formats and storage details internally.
type Store interface {
	// List returns the names of all region files in the store,
	// e.g. "r.0.-1.mca". Names carry no directory components.
	List(ctx context.Context) ([]string, error)

	// Read returns the full content of the named region file.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write stores data under the given name, replacing any existing
	// file. Implementations make the write durable before returning.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes the named region file.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error
}
