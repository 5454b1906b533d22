// Package storage implements the content-addressable blob store: files are
// keyed by their SHA-256 digest and live under a sharded directory layout
// derived from it.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

var (
	// ErrNotFound is returned when no file exists for a digest.
	ErrNotFound = errors.New("file not found")

	// ErrIoFailure wraps unclassified filesystem errors.
	ErrIoFailure = errors.New("io failure")

	// ErrInvalidPath is returned when the store root is unusable.
	ErrInvalidPath = errors.New("invalid path")

	// ErrStorageFull is returned when the filesystem reports no space or
	// quota exceeded.
	ErrStorageFull = errors.New("storage full or quota exceeded")

	// ErrDigestMismatch is returned when content does not hash to the
	// digest the caller declared.
	ErrDigestMismatch = errors.New("digest mismatch")

	// ErrContentTypeMismatch is returned when sniffed content does not
	// match the declared media type.
	ErrContentTypeMismatch = errors.New("content type mismatch")
)

// FileMetadata describes a stored blob using filesystem-native attributes.
type FileMetadata struct {
	Size         int64
	LastModified time.Time
}

// FileStorage is the blob store contract. Callers supply the digest; the
// store never hashes content itself.
type FileStorage interface {
	// Store persists the stream under the digest's path and returns the
	// final path. Storing an already-present digest is a no-op returning
	// the existing path.
	Store(ctx context.Context, digest models.ContentDigest, r io.Reader) (string, error)

	// Retrieve opens the blob for sequential reading.
	Retrieve(ctx context.Context, digest models.ContentDigest) (io.ReadCloser, error)

	// Exists checks for the blob without opening it.
	Exists(ctx context.Context, digest models.ContentDigest) (bool, error)

	// Delete removes the blob, reporting whether anything was removed.
	// Absence is not an error.
	Delete(ctx context.Context, digest models.ContentDigest) (bool, error)

	// Path returns the absolute path the digest maps to.
	Path(digest models.ContentDigest) string

	// Metadata returns size and modification time of the blob.
	Metadata(ctx context.Context, digest models.ContentDigest) (FileMetadata, error)

	// HealthCheck verifies the store root exists, is a directory and is
	// writable.
	HealthCheck(ctx context.Context) error
}
