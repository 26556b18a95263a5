package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// creatorProcessor creates one chunk from the whole text.
type creatorProcessor struct{}

func (creatorProcessor) Name() string { return "creator" }

func (creatorProcessor) Process(_ context.Context, fingerprint, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	return []domain.Chunk{{ID: "c0", Fingerprint: fingerprint, Index: 0, Text: text}}, nil
}

// upperProcessor transforms chunk text in place.
type upperProcessor struct{}

func (upperProcessor) Name() string { return "upper" }

func (upperProcessor) Process(_ context.Context, _, _ string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].Text = strings.ToUpper(chunks[i].Text)
	}
	return chunks, nil
}

// failingProcessor always errors.
type failingProcessor struct{}

func (failingProcessor) Name() string { return "failing" }

func (failingProcessor) Process(_ context.Context, _, _ string, _ []domain.Chunk) ([]domain.Chunk, error) {
	return nil, errors.New("boom")
}

func TestPipeline_ChainsProcessors(t *testing.T) {
	p := NewPipeline(creatorProcessor{}, upperProcessor{})

	chunks, err := p.Process(context.Background(), "fp1", "hello")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "HELLO", chunks[0].Text)
	assert.Equal(t, "fp1", chunks[0].Fingerprint)
}

func TestPipeline_ErrorNamesProcessor(t *testing.T) {
	p := NewPipeline(creatorProcessor{}, failingProcessor{})

	_, err := p.Process(context.Background(), "fp1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor failing")
}

func TestPipeline_Empty(t *testing.T) {
	p := NewPipeline()

	chunks, err := p.Process(context.Background(), "fp1", "hello")
	require.NoError(t, err)
	assert.Nil(t, chunks)
	assert.Zero(t, p.Len())
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(creatorProcessor{})
	assert.Equal(t, 1, p.Len())
}
