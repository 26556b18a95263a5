package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta/internal/storage/memory"
)

// --- Mock implementations for extraction testing ---

// mockExtractor implements driven.Extractor with canned results.
type mockExtractor struct {
	name       string
	extensions []string
	result     *driven.ExtractionResult
	err        error
}

func (m *mockExtractor) Name() string                  { return m.name }
func (m *mockExtractor) Version() string               { return "1.0.0-test" }
func (m *mockExtractor) SupportedExtensions() []string { return m.extensions }
func (m *mockExtractor) Priority() int                 { return 0 }

func (m *mockExtractor) Extract(_ context.Context, _ string) (*driven.ExtractionResult, error) {
	return m.result, m.err
}

func (m *mockExtractor) ExtractBlob(_ context.Context, _ []byte, _ string) (*driven.ExtractionResult, error) {
	return m.result, m.err
}

// mockRegistry implements driven.ExtractorRegistry over a flat list.
type mockRegistry struct {
	extractors []driven.Extractor
}

func (m *mockRegistry) ForExtension(extension string) (driven.Extractor, error) {
	for _, e := range m.extractors {
		for _, ext := range e.SupportedExtensions() {
			if ext == extension {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, extension)
}

func (m *mockRegistry) Register(e driven.Extractor) { m.extractors = append(m.extractors, e) }

func (m *mockRegistry) Names() []string {
	names := make([]string, 0, len(m.extractors))
	for _, e := range m.extractors {
		names = append(names, e.Name())
	}
	return names
}

// wordPipeline implements driven.PostProcessorPipeline: one chunk per
// whitespace-separated word.
type wordPipeline struct{}

func (wordPipeline) Process(_ context.Context, fingerprint, text string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i, word := range strings.Fields(text) {
		chunks = append(chunks, domain.Chunk{
			ID:          fmt.Sprintf("%s-%d", fingerprint, i),
			Fingerprint: fingerprint,
			Index:       i,
			Text:        word,
		})
	}
	return chunks, nil
}

// staticEmbedder implements driven.EmbeddingService.
type staticEmbedder struct{ payload []byte }

func (e *staticEmbedder) Embed(_ context.Context, _ string) ([]byte, error) {
	return e.payload, nil
}

func seedPendingFile(t *testing.T, store *memory.Store, fingerprint, extension string) {
	t.Helper()
	err := store.UpsertFile(context.Background(), &domain.FileRecord{
		Fingerprint: fingerprint,
		SourcePath:  "/docs/" + fingerprint + extension,
		Name:        fingerprint + extension,
		Extension:   extension,
		SizeBytes:   10,
		Blob:        []byte("stored blob"),
	})
	require.NoError(t, err)
}

func textExtractor(text string) *mockExtractor {
	return &mockExtractor{
		name:       "mock-text",
		extensions: []string{".txt"},
		result: &driven.ExtractionResult{
			Success:  true,
			Text:     text,
			Tables:   []map[string]any{{"rows": float64(2)}},
			Metadata: map[string]any{"pages": float64(1)},
		},
	}
}

func TestRunPending_Success(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedPendingFile(t, store, "fp1", ".txt")

	registry := &mockRegistry{}
	registry.Register(textExtractor("alpha beta gamma"))

	svc := NewExtractService(store, registry, wordPipeline{}, &staticEmbedder{payload: []byte{1, 2}}, nil)

	outcomes, err := svc.RunPending(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusCompleted, outcomes[0].Status)
	assert.Equal(t, 3, outcomes[0].ChunkCount)

	record, err := store.GetFile(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, record.Status)
	assert.Equal(t, 3, record.ChunkCount)
	assert.Equal(t, "mock-text", record.ExtractorUsed)

	// One text row plus one table row, in insertion order.
	contents, err := store.GetExtractedContent(ctx, "fp1")
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "text", contents[0].ContentType)
	assert.Equal(t, "alpha beta gamma", contents[0].Text)
	assert.Equal(t, "mock-text", contents[0].ExtractorName)
	assert.Equal(t, "table", contents[1].ContentType)

	chunks, err := store.GetChunksByFile(ctx, "fp1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "alpha", chunks[0].Text)
	assert.Equal(t, []byte{1, 2}, chunks[0].Embedding)
}

func TestRunPending_BackendReportsFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedPendingFile(t, store, "fp1", ".txt")

	registry := &mockRegistry{}
	registry.Register(&mockExtractor{
		name:       "broken",
		extensions: []string{".txt"},
		result:     &driven.ExtractionResult{Success: false, Error: "parser crashed"},
	})

	svc := NewExtractService(store, registry, wordPipeline{}, nil, nil)

	outcomes, err := svc.RunPending(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusFailed, outcomes[0].Status)
	assert.Equal(t, "parser crashed", outcomes[0].Error)

	record, err := store.GetFile(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, record.Status)
	assert.Equal(t, "parser crashed", record.ErrorMessage)

	// Nothing was persisted for the failed file.
	contents, err := store.GetExtractedContent(ctx, "fp1")
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestRunPending_NoBackendForExtension(t *testing.T) {
	store := memory.NewStore()
	seedPendingFile(t, store, "fp1", ".docx")

	svc := NewExtractService(store, &mockRegistry{}, wordPipeline{}, nil, nil)

	outcomes, err := svc.RunPending(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusFailed, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Error, ".docx")
}

func TestRetryFailed(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedPendingFile(t, store, "fp1", ".txt")

	broken := &mockExtractor{
		name:       "flaky",
		extensions: []string{".txt"},
		result:     &driven.ExtractionResult{Success: false, Error: "transient"},
	}
	registry := &mockRegistry{}
	registry.Register(broken)

	svc := NewExtractService(store, registry, wordPipeline{}, nil, nil)

	_, err := svc.RunPending(ctx)
	require.NoError(t, err)

	// The backend recovers; retrying drains the failed bucket.
	broken.result = &driven.ExtractionResult{Success: true, Text: "recovered text"}

	outcomes, err := svc.RetryFailed(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusCompleted, outcomes[0].Status)

	failed, err := store.ListByStatus(ctx, domain.StatusFailed)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestExtractOne_RecompletesCompletedFile(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedPendingFile(t, store, "fp1", ".txt")

	registry := &mockRegistry{}
	registry.Register(textExtractor("first pass"))

	svc := NewExtractService(store, registry, nil, nil, nil)

	_, err := svc.RunPending(ctx)
	require.NoError(t, err)

	outcome, err := svc.ExtractOne(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, outcome.Status)

	// Extraction rows are append-only history: two passes, two sets.
	contents, err := store.GetExtractedContent(ctx, "fp1")
	require.NoError(t, err)
	assert.Len(t, contents, 4)
}

func TestExtractOne_UnknownFingerprint(t *testing.T) {
	svc := NewExtractService(memory.NewStore(), &mockRegistry{}, nil, nil, nil)

	_, err := svc.ExtractOne(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunPending_Cancelled(t *testing.T) {
	store := memory.NewStore()
	seedPendingFile(t, store, "fp1", ".txt")

	registry := &mockRegistry{}
	registry.Register(textExtractor("never reached"))

	svc := NewExtractService(store, registry, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := svc.RunPending(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcomes)
}
