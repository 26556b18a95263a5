package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.DataDir)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, domain.DefaultExtensions(), cfg.Policy.AllowedExtensions)
	assert.Equal(t, int64(domain.DefaultMinSizeBytes), cfg.Policy.MinSizeBytes)
	assert.Equal(t, int64(domain.DefaultMaxSizeBytes), cfg.Policy.MaxSizeBytes)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.DataDir = "/var/lib/ingesta"
	cfg.Verbose = true
	cfg.Policy.AllowedExtensions = []string{".txt"}
	cfg.Chunker.ChunkSize = 500
	cfg.Chunker.Overlap = 50
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ingesta", loaded.DataDir)
	assert.True(t, loaded.Verbose)
	assert.Equal(t, []string{".txt"}, loaded.Policy.AllowedExtensions)
	assert.Equal(t, 500, loaded.Chunker.ChunkSize)
	assert.Equal(t, 50, loaded.Chunker.Overlap)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("verbose = true\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, domain.DefaultExtensions(), cfg.Policy.AllowedExtensions)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("verbose = [broken"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestToPolicy_AppliesDefaults(t *testing.T) {
	cfg := &Config{}
	policy := cfg.ToPolicy()

	assert.Equal(t, domain.DefaultExtensions(), policy.AllowedExtensions)
	assert.Equal(t, int64(domain.DefaultMinSizeBytes), policy.MinSizeBytes)
}

func TestChunkerSettings(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.ChunkerSettings())

	cfg.Chunker.ChunkSize = 800
	settings := cfg.ChunkerSettings()
	assert.Equal(t, 800, settings["chunk_size"])
	assert.NotContains(t, settings, "overlap")
}
