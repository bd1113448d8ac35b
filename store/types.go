package store

import (
	"context"
	"errors"
	"io"
)

// Store is the capability-based collaborator the ingest and retrieval
// core depends on. Add persists a chunk and returns the durable name it
// can later be retrieved by; Get streams a previously added chunk back
// out. Implementations may deduplicate by content — the core neither
// requires nor assumes this — and own their retry policy for transient
// failures; the core never retries internally.
type Store interface {
	// Add persists chunk and returns the name subsequent Get calls use
	// to retrieve it. It blocks until the chunk is durable enough to be
	// immediately retrievable.
	Add(ctx context.Context, chunk string) (name string, err error)

	// Get returns a reader over the named chunk's bytes and its exact
	// byte length. Callers must close the returned reader.
	Get(ctx context.Context, name string) (r io.ReadCloser, size int64, err error)

	// Close releases any resources (file handles, connections) held by
	// the backend.
	Close() error
}

// TransientError wraps a retryable downstream failure (a timed-out dial,
// a connection reset). The core surfaces it as a 500 and never retries;
// retrying, if a backend wants it, is that backend's own policy.
type TransientError struct {
	Op    string
	Cause error
}

func (e *TransientError) Error() string {
	return "store: transient failure during " + e.Op + ": " + e.Cause.Error()
}

func (e *TransientError) Unwrap() error { return e.Cause }

// PermanentError wraps a non-retryable downstream failure (disk full,
// permission denied, a malformed name).
type PermanentError struct {
	Op    string
	Cause error
}

func (e *PermanentError) Error() string {
	return "store: permanent failure during " + e.Op + ": " + e.Cause.Error()
}

func (e *PermanentError) Unwrap() error { return e.Cause }

// ErrNotFound is returned by Get when name has never been added.
var ErrNotFound = errors.New("store: chunk not found")

// Config selects and configures one backend. Only the fields under the
// chosen Backend are consulted.
type Config struct {
	Backend string       `yaml:"backend"`
	Disk    DiskConfig   `yaml:"disk"`
	Badger  BadgerConfig `yaml:"badger"`
	Redis   RedisConfig  `yaml:"redis"`
}

// DiskConfig configures the filesystem-backed store.
type DiskConfig struct {
	Path string `yaml:"path"`
}

// BadgerConfig configures the embedded Badger-backed store.
type BadgerConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}
