// Package redis implements a chunk store backed by a Redis server. Chunks
// are named and keyed by the SHA-256 of their content, stored under an
// optional key prefix.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	goredis "github.com/go-redis/redis/v8"
	"github.com/georocket/georocket-go/store"
)

// Option configures a redis-backed Store.
type Option struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store is a Redis-backed Store.
type Store struct {
	rdb    *goredis.Client
	option Option
}

// New dials addr and returns a redis-backed Store.
func New(option Option) (*Store, error) {
	if option.Addr == "" {
		option.Addr = "127.0.0.1:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     option.Addr,
		Password: option.Password,
		DB:       option.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, &store.TransientError{Op: "open", Cause: fmt.Errorf("redis: ping %s: %w", option.Addr, err)}
	}
	return &Store{rdb: rdb, option: option}, nil
}

// Add writes chunk under its content hash and returns that hash as the
// chunk's name.
func (s *Store) Add(ctx context.Context, chunk string) (string, error) {
	sum := sha256.Sum256([]byte(chunk))
	name := hex.EncodeToString(sum[:])
	key := s.key(name)

	// SETNX makes re-ingesting identical content a no-op rather than an
	// extra network write.
	if err := s.rdb.SetNX(ctx, key, chunk, 0).Err(); err != nil {
		return "", &store.TransientError{Op: "add", Cause: fmt.Errorf("redis: setnx %s: %w", key, err)}
	}
	return name, nil
}

// Get returns the named chunk's bytes and exact length.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	key := s.key(name)

	size, err := s.rdb.StrLen(ctx, key).Result()
	if err != nil {
		return nil, 0, &store.TransientError{Op: "get", Cause: fmt.Errorf("redis: strlen %s: %w", key, err)}
	}
	if size == 0 {
		exists, err := s.rdb.Exists(ctx, key).Result()
		if err != nil {
			return nil, 0, &store.TransientError{Op: "get", Cause: fmt.Errorf("redis: exists %s: %w", key, err)}
		}
		if exists == 0 {
			return nil, 0, store.ErrNotFound
		}
	}

	val, err := s.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, 0, store.ErrNotFound
	}
	if err != nil {
		return nil, 0, &store.TransientError{Op: "get", Cause: fmt.Errorf("redis: get %s: %w", key, err)}
	}

	return io.NopCloser(strings.NewReader(val)), int64(len(val)), nil
}

// Close closes the underlying Redis client connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) key(name string) string {
	if s.option.Prefix == "" {
		return name
	}
	return s.option.Prefix + name
}
