package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuildChunker(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	assert.True(t, r.Has("chunker"))
	assert.Contains(t, r.Names(), "chunker")

	processor, err := r.Build("chunker", map[string]any{
		"chunk_size": int64(100), // TOML integers arrive as int64
		"overlap":    float64(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "chunker", processor.Name())
}

func TestRegistry_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no processor registered as "nope"`)
	assert.False(t, r.Has("nope"))
}

func TestRegistry_NilConfigUsesDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	processor, err := r.Build("chunker", nil)
	require.NoError(t, err)
	assert.NotNil(t, processor)
}
