// Package diskstore implements a local-filesystem storage backend.
package diskstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/craftops/regionpress/internal/worldstore"
)

// Compile-time check that Store implements worldstore.Store.
var _ worldstore.Store = (*Store)(nil)

// Store is a disk-based storage backend rooted at one directory.
type Store struct {
	root string
}

// New creates a new disk store rooted at the given directory.
// The directory must exist.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{root: root}, nil
}

// List returns the names of regular files directly under the root.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Read reads a region file from disk.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, worldstore.ErrNotFound
		}
		return nil, fmt.Errorf("reading region: %w", err)
	}
	return data, nil
}

// Write stores a region file durably: the bytes land in a temp file that
// is fsynced and renamed over the destination, so a crash never leaves a
// half-written region behind.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing region: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing region: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing region: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.root, name)); err != nil {
		return fmt.Errorf("renaming region: %w", err)
	}
	return nil
}

// Delete removes a region file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, name)); err != nil {
		if os.IsNotExist(err) {
			return worldstore.ErrNotFound
		}
		return fmt.Errorf("deleting region: %w", err)
	}
	return nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}
