// Package disk implements a filesystem-backed chunk store. Chunks are
// named by the SHA-256 of their content and written atomically (temp
// file + rename) under a two-level hex fan-out directory so that no
// single directory accumulates an unbounded number of entries.
package disk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/georocket/georocket-go/store"
)

// Store is a content-addressed, disk-backed Store.
type Store struct {
	root string
}

// New opens (creating if necessary) a disk-backed Store rooted at root.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./data/chunks"
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &store.PermanentError{Op: "open", Cause: fmt.Errorf("disk: create root %s: %w", root, err)}
	}
	return &Store{root: root}, nil
}

// Add writes chunk to disk under its content hash and returns that hash
// as the chunk's name.
func (s *Store) Add(ctx context.Context, chunk string) (string, error) {
	sum := sha256.Sum256([]byte(chunk))
	name := hex.EncodeToString(sum[:])
	path := s.pathFor(name)

	if _, err := os.Stat(path); err == nil {
		// Already present: a content-addressed store is naturally
		// idempotent, re-ingesting the same bytes is a no-op.
		return name, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &store.PermanentError{Op: "add", Cause: fmt.Errorf("disk: create dir %s: %w", dir, err)}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", &store.PermanentError{Op: "add", Cause: fmt.Errorf("disk: create temp file: %w", err)}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.WriteString(chunk); err != nil {
		tmp.Close()
		return "", &store.TransientError{Op: "add", Cause: fmt.Errorf("disk: write %s: %w", tmpPath, err)}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", &store.TransientError{Op: "add", Cause: fmt.Errorf("disk: sync %s: %w", tmpPath, err)}
	}
	if err := tmp.Close(); err != nil {
		return "", &store.TransientError{Op: "add", Cause: fmt.Errorf("disk: close %s: %w", tmpPath, err)}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", &store.PermanentError{Op: "add", Cause: fmt.Errorf("disk: rename into place: %w", err)}
	}

	return name, nil
}

// Get opens the named chunk.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	path := s.pathFor(name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, store.ErrNotFound
		}
		return nil, 0, &store.TransientError{Op: "get", Cause: fmt.Errorf("disk: open %s: %w", path, err)}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, &store.TransientError{Op: "get", Cause: fmt.Errorf("disk: stat %s: %w", path, err)}
	}
	return f, info.Size(), nil
}

// Close is a no-op: the disk backend holds no long-lived handles between
// calls.
func (s *Store) Close() error { return nil }

// Size walks the store root and reports how many chunks it holds and
// their total size in bytes.
func (s *Store) Size(ctx context.Context) (chunks int64, bytes int64, err error) {
	walkErr := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		chunks++
		bytes += info.Size()
		return nil
	})
	if walkErr != nil {
		return 0, 0, &store.TransientError{Op: "size", Cause: fmt.Errorf("disk: walk %s: %w", s.root, walkErr)}
	}
	return chunks, bytes, nil
}

// pathFor maps a content hash to its on-disk location, fanning out into
// two levels of hex-prefix subdirectories (aa/bb/aabbcc...) to bound the
// number of entries in any one directory at scale.
func (s *Store) pathFor(name string) string {
	if len(name) < 4 {
		return filepath.Join(s.root, name)
	}
	return filepath.Join(s.root, name[0:2], name[2:4], name)
}
