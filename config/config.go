// Package config loads the YAML-driven configuration for the georocket
// ingest/retrieval service: the HTTP bind address and port, and which
// store backend to use.
package config

import (
	"fmt"
	"os"

	"github.com/georocket/georocket-go/store"
	"gopkg.in/yaml.v3"
)

// Config is the top-level, YAML-serializable service configuration.
type Config struct {
	Host  string       `yaml:"host"`
	Port  int          `yaml:"port"`
	Store store.Config `yaml:"store"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Host: "0.0.0.0",
		Port: 9419,
		Store: store.Config{
			Backend: "disk",
			Disk:    store.DiskConfig{Path: "./data/chunks"},
		},
	}
}

// Load reads and parses a YAML config file at path, filling in defaults
// for anything the file leaves zero-valued.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 9419
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "disk"
	}
	return cfg, nil
}

// Addr renders the host:port the HTTP server should bind to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
