package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mediakeeper/internal/logging"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

// Filesystem stores blobs on a local filesystem under root, sharding paths
// by the digest's leading bytes to keep directory fanout bounded.
type Filesystem struct {
	root   string
	logger logging.Logger
}

var _ FileStorage = (*Filesystem)(nil)

// NewFilesystem creates a store rooted at root. The root directory must
// already exist.
func NewFilesystem(root string, logger logging.Logger) *Filesystem {
	return &Filesystem{root: root, logger: logger}
}

// Path returns the sharded absolute path for a digest, e.g.
// <root>/b9/4d/27/b94d27....
func (s *Filesystem) Path(digest models.ContentDigest) string {
	return filepath.Join(s.root, digest.StoragePath())
}

func (s *Filesystem) Store(ctx context.Context, digest models.ContentDigest, r io.Reader) (string, error) {
	path := s.Path(digest)

	// identical content is already on disk, nothing to write
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug(ctx, "content already stored", "digest", digest.String())
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: stat %s: %v", ErrIoFailure, path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return "", classifyWriteErr(err, "mkdir")
	}

	// unique temp name so concurrent writers of the same digest never
	// observe each other's partial writes
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString()[:8])
	if err := s.writeTemp(tmp, r); err != nil {
		os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", classifyWriteErr(err, "rename")
	}

	s.logger.Debug(ctx, "content stored", "digest", digest.String(), "path", path)
	return path, nil
}

func (s *Filesystem) writeTemp(tmp string, r io.Reader) error {
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return classifyWriteErr(err, "create temp")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return classifyWriteErr(err, "write")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return classifyWriteErr(err, "sync")
	}
	if err := f.Close(); err != nil {
		return classifyWriteErr(err, "close")
	}
	return nil
}

func (s *Filesystem) Retrieve(ctx context.Context, digest models.ContentDigest) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(digest))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, digest.String())
		}
		return nil, fmt.Errorf("%w: open: %v", ErrIoFailure, err)
	}
	return f, nil
}

func (s *Filesystem) Exists(ctx context.Context, digest models.ContentDigest) (bool, error) {
	_, err := os.Stat(s.Path(digest))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat: %v", ErrIoFailure, err)
}

func (s *Filesystem) Delete(ctx context.Context, digest models.ContentDigest) (bool, error) {
	path := s.Path(digest)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: remove: %v", ErrIoFailure, err)
	}
	s.cleanupEmptyDirs(filepath.Dir(path))
	return true, nil
}

// cleanupEmptyDirs walks upward from dir removing empty shard directories.
// It never crosses the store root and aborts silently on the first
// non-empty directory or removal failure.
func (s *Filesystem) cleanupEmptyDirs(dir string) {
	root := filepath.Clean(s.root)
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func (s *Filesystem) Metadata(ctx context.Context, digest models.ContentDigest) (FileMetadata, error) {
	info, err := os.Stat(s.Path(digest))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, digest.String())
		}
		return FileMetadata{}, fmt.Errorf("%w: stat: %v", ErrIoFailure, err)
	}
	return FileMetadata{Size: info.Size(), LastModified: info.ModTime()}, nil
}

// HealthCheck stats the root and writes a throwaway probe file to confirm
// the volume is mounted and writable.
func (s *Filesystem) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: storage root %s", ErrNotFound, s.root)
		}
		return fmt.Errorf("%w: stat root: %v", ErrIoFailure, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: storage root %s is not a directory", ErrInvalidPath, s.root)
	}

	probe := filepath.Join(s.root, ".health_check_"+uuid.NewString())
	if err := os.WriteFile(probe, []byte("ok"), 0o660); err != nil {
		return classifyWriteErr(err, "write probe")
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("%w: remove probe: %v", ErrIoFailure, err)
	}
	return nil
}

func classifyWriteErr(err error, op string) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return fmt.Errorf("%w: %s: %v", ErrStorageFull, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrIoFailure, op, err)
}
