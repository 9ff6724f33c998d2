// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/craftops/regionpress/internal/worldstore"
)

// Compile-time check that Store implements worldstore.Store.
var _ worldstore.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets an object prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// List returns the names of all objects under the prefix. Objects in
// nested "directories" are skipped.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing regions: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, s.prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Read reads the content of the named region.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	reader, err := s.bucket.Object(s.prefix + name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, worldstore.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading region: %w", err)
	}
	return data, nil
}

// Write stores a region object.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	w := s.bucket.Object(s.prefix + name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing region: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing region: %w", err)
	}
	return nil
}

// Delete removes a region object.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.bucket.Object(s.prefix + name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return worldstore.ErrNotFound
		}
		return fmt.Errorf("deleting region: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}
