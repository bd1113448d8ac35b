// Package badger implements a chunk store backed by an embedded Badger
// key-value database. Chunks are named and keyed by the SHA-256 of their
// content.
package badger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/georocket/georocket-go/store"
)

// Store is a Badger-backed Store.
type Store struct {
	db   *badger.DB
	path string
}

// New opens (creating if necessary) a Badger-backed Store rooted at path.
func New(path string) (*Store, error) {
	if path == "" {
		path = "./data/badger"
	}

	dbPath := path
	if !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") {
		dbPath = "./" + path
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, &store.PermanentError{Op: "open", Cause: fmt.Errorf("badger: create directory %s: %w", dbPath, err)}
	}

	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // badger's own logger is noisy at our log level

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &store.PermanentError{Op: "open", Cause: fmt.Errorf("badger: open %s: %w", dbPath, err)}
	}

	return &Store{db: db, path: filepath.Clean(dbPath)}, nil
}

// Add writes chunk under its content hash and returns that hash as the
// chunk's name.
func (s *Store) Add(ctx context.Context, chunk string) (string, error) {
	sum := sha256.Sum256([]byte(chunk))
	name := hex.EncodeToString(sum[:])
	key := []byte(name)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return nil // already present, content-addressed store is idempotent
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, []byte(chunk))
	})
	if err != nil {
		return "", &store.TransientError{Op: "add", Cause: fmt.Errorf("badger: set %s: %w", name, err)}
	}
	return name, nil
}

// Get returns the named chunk's bytes wrapped in a ReadCloser, and its
// exact length.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, 0, store.ErrNotFound
	}
	if err != nil {
		return nil, 0, &store.TransientError{Op: "get", Cause: fmt.Errorf("badger: get %s: %w", name, err)}
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// Close closes the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}
