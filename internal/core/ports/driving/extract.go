package driving

import (
	"context"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// ExtractionOutcome is the per-file result of an extraction run.
type ExtractionOutcome struct {
	// Fingerprint identifies the file.
	Fingerprint string

	// Path is the file's recorded source path.
	Path string

	// Status is the terminal status after the attempt.
	Status domain.Status

	// ChunkCount is the number of chunks stored.
	ChunkCount int

	// Error is the failure reason when Status is failed.
	Error string
}

// ExtractionRunner drives pending files through extraction backends
// and persists the standardized results.
type ExtractionRunner interface {
	// RunPending extracts every pending file. Cancellation is checked
	// between files; files processed so far stay fully committed.
	RunPending(ctx context.Context) ([]ExtractionOutcome, error)

	// RetryFailed moves failed files back through extraction.
	RetryFailed(ctx context.Context) ([]ExtractionOutcome, error)

	// ExtractOne runs extraction for a single tracked file.
	ExtractOne(ctx context.Context, fingerprint string) (*ExtractionOutcome, error)
}
