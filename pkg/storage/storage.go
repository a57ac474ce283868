// Package storage abstracts where recordings live. The diarizer reads
// audio through a Blobs implementation so that recordings on local disk
// and recordings in an S3-compatible object store are handled the same
// way; registry backups are written through the same interface.
//
// Paths are forward-slash separated and relative to the store root.
package storage

import (
	"context"
	"io"
)

// Blobs is a minimal blob-oriented storage interface.
// Implementations must be safe for concurrent use.
type Blobs interface {
	// Open opens the named blob for reading.
	// The caller must close the returned ReadCloser when done.
	// If the blob does not exist, an error wrapping os.ErrNotExist is returned.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create opens the named blob for writing, truncating any existing
	// content. The caller must close the returned WriteCloser to flush.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// Exists reports whether the named blob exists.
	Exists(ctx context.Context, path string) (bool, error)
}
