// Package config loads and persists the ingesta configuration as a
// TOML file, by default at ~/.ingesta/config.toml. Missing files are
// not an error; defaults apply and Save writes them out.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is where the content database lives.
	DataDir string `toml:"data_dir"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Policy  PolicyConfig  `toml:"policy"`
	Chunker ChunkerConfig `toml:"chunker"`
}

// PolicyConfig mirrors the file acceptance policy.
type PolicyConfig struct {
	AllowedExtensions []string `toml:"allowed_extensions"`
	MinSizeBytes      int64    `toml:"min_size_bytes"`
	MaxSizeBytes      int64    `toml:"max_size_bytes"`
}

// ChunkerConfig configures the chunking post-processor.
type ChunkerConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	policy := domain.Policy{}.Normalised()
	return &Config{
		Policy: PolicyConfig{
			AllowedExtensions: policy.AllowedExtensions,
			MinSizeBytes:      policy.MinSizeBytes,
			MaxSizeBytes:      policy.MaxSizeBytes,
		},
	}
}

// DefaultPath returns ~/.ingesta/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ingesta", "config.toml"), nil
}

// Load reads the config at path, or the default path when empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as TOML to path, creating the directory.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ToPolicy converts the policy section to the domain type, applying
// defaults for unset fields.
func (c *Config) ToPolicy() domain.Policy {
	return domain.Policy{
		AllowedExtensions: c.Policy.AllowedExtensions,
		MinSizeBytes:      c.Policy.MinSizeBytes,
		MaxSizeBytes:      c.Policy.MaxSizeBytes,
	}.Normalised()
}

// ChunkerSettings returns the chunker section as a generic config map
// for the post-processor registry.
func (c *Config) ChunkerSettings() map[string]any {
	settings := make(map[string]any)
	if c.Chunker.ChunkSize > 0 {
		settings["chunk_size"] = c.Chunker.ChunkSize
	}
	if c.Chunker.Overlap > 0 {
		settings["overlap"] = c.Chunker.Overlap
	}
	return settings
}
