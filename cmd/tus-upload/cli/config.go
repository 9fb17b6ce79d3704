// Package cli implements the tus-upload command-line wrapper around
// pkg/tusclient: flag/config parsing, logging setup, and a progress
// renderer driven by the engine's Observer callbacks.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig holds the persistent defaults read from
// ~/.config/tus-upload/config.toml. Command-line flags always win over
// values loaded here.
type FileConfig struct {
	Endpoint           string  `toml:"endpoint"`
	ChunkSizeBytes     int64   `toml:"chunk_size_bytes"`
	MaxRetries         int     `toml:"max_retries"`
	RetryScale         string  `toml:"retry_scale"`
	FirstRetryCooldown float64 `toml:"first_retry_cooldown_seconds"`
	StoreDir           string  `toml:"store_dir"`
}

// DefaultConfigPath returns ~/.config/tus-upload/config.toml, the
// conventional location tus-upload looks for persistent defaults.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tus-upload", "config.toml"), nil
}

// LoadFileConfig reads path if it exists. A missing file is not an error;
// it just means every default comes from the flags.
func LoadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}
