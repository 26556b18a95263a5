package driven

import (
	"context"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// PostProcessor processes extracted text to produce chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, filtering).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a file's fingerprint and extracted text, plus the
	// chunks produced so far. Creators receive nil chunks and return
	// new ones; transformers receive and return chunks.
	Process(ctx context.Context, fingerprint, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the extracted text through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, fingerprint, text string) ([]domain.Chunk, error)
}
