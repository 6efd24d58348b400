package storage

import (
	"context"

	"makepot/internal/catalog"
)

// RecordCache persists the extraction records of source files between runs.
type RecordCache interface {
	// Lookup returns the records stored for path when they were saved under
	// fingerprint. ok is false on a miss or a stale entry.
	Lookup(ctx context.Context, path, fingerprint string) (records []catalog.Record, ok bool, err error)

	// Save upserts the records of path.
	Save(ctx context.Context, path, fingerprint string, records []catalog.Record) error

	// Prune drops cached files whose path is not in keep.
	Prune(ctx context.Context, keep []string) (int, error)

	// Clear drops every cached file.
	Clear(ctx context.Context) error

	Close() error
}
