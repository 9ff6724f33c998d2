package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/craftops/regionpress/internal/worldstore"
	"github.com/craftops/regionpress/internal/worldstore/diskstore"
	"github.com/craftops/regionpress/internal/worldstore/gcsstore"
	"github.com/craftops/regionpress/internal/worldstore/s3store"
)

// openStore resolves a location flag to a storage backend. Plain paths
// are local directories; s3:// and gs:// URLs address object storage.
func openStore(ctx context.Context, location string, create bool) (worldstore.Store, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(location, "s3://"))
		return s3store.New(ctx, bucket, s3store.WithPrefix(prefix))
	case strings.HasPrefix(location, "gs://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(location, "gs://"))
		return gcsstore.New(ctx, bucket, gcsstore.WithPrefix(prefix))
	default:
		if create {
			if err := os.MkdirAll(location, 0755); err != nil {
				return nil, fmt.Errorf("creating directory %q: %w", location, err)
			}
		}
		return diskstore.New(location)
	}
}

func splitBucket(s string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(s, "/")
	return bucket, prefix
}
