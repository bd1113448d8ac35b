// Package store defines the chunk content store contract consumed by the
// ingest pipeline and the retrieval HTTP handler, plus a factory that
// wires a Config onto one of the concrete backends in the disk, badger
// and redis subpackages.
package store

import (
	"fmt"
	"strings"

	"github.com/georocket/georocket-go/store/badger"
	"github.com/georocket/georocket-go/store/disk"
	"github.com/georocket/georocket-go/store/redis"
)

// New builds the Store backend named by cfg.Backend.
func New(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "disk":
		return disk.New(cfg.Disk.Path)
	case "badger":
		return badger.New(cfg.Badger.Path)
	case "redis":
		return redis.New(redis.Option{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}
