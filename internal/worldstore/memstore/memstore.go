// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/craftops/regionpress/internal/worldstore"
)

// Compile-time check that Store implements worldstore.Store.
var _ worldstore.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu      sync.RWMutex
	regions map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		regions: make(map[string][]byte),
	}
}

// List returns all region names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.regions))
	for name := range s.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read reads a region from memory.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.regions[name]
	if !ok {
		return nil, worldstore.ErrNotFound
	}
	return data, nil
}

// Write stores a region in memory. The data is copied to prevent caller
// mutations from affecting the store.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	s.regions[name] = copied
	return nil
}

// Delete removes a region from memory.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[name]; !ok {
		return worldstore.ErrNotFound
	}
	delete(s.regions, name)
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
