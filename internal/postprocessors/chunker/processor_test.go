package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_SplitsWithOverlap(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))

	text := strings.Repeat("abcdefghij", 3) // 30 chars
	chunks, err := p.Process(context.Background(), "fp1", text, nil)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Step is chunkSize - overlap = 8; indexes are sequential and
	// every chunk carries the fingerprint.
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, "fp1", chunk.Fingerprint)
		assert.NotEmpty(t, chunk.ID)
	}
	assert.Equal(t, text[:10], chunks[0].Text)
	assert.Equal(t, text[8:18], chunks[1].Text)
}

func TestProcess_EmptyTextProducesNoChunks(t *testing.T) {
	p := New()

	chunks, err := p.Process(context.Background(), "fp1", "", nil)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestProcess_ShortTextSingleChunk(t *testing.T) {
	p := New()

	chunks, err := p.Process(context.Background(), "fp1", "short", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Text)
}

func TestProcess_MultibyteRunesStayWhole(t *testing.T) {
	p := New(WithChunkSize(3), WithOverlap(0))

	chunks, err := p.Process(context.Background(), "fp1", "日本語のテキスト", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "日本語", chunks[0].Text)
	assert.Equal(t, "のテキ", chunks[1].Text)
	assert.Equal(t, "スト", chunks[2].Text)
}

func TestNew_ClampsExcessiveOverlap(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(50))

	// Overlap larger than the chunk size falls back to a quarter.
	chunks, err := p.Process(context.Background(), "fp1", strings.Repeat("x", 25), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestProcess_UniqueIDs(t *testing.T) {
	p := New(WithChunkSize(5), WithOverlap(0))

	chunks, err := p.Process(context.Background(), "fp1", strings.Repeat("y", 20), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		assert.False(t, seen[chunk.ID])
		seen[chunk.ID] = true
	}
}
