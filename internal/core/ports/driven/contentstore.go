package driven

import (
	"context"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// ContentStore persists file records, extracted content and chunks,
// keyed by content fingerprint. Backed by SQLite.
//
// The store owns referential integrity: child inserts fail with
// domain.ErrUnknownFingerprint when no FileRecord exists, and deleting
// a file cascades to its children. Writes to the same fingerprint are
// serialized by the store so concurrent ingestion runs never produce
// two records for one fingerprint.
type ContentStore interface {
	// UpsertFile inserts or replaces a FileRecord by fingerprint.
	// Metadata and blob are overwritten; dependent extracted content
	// and chunk rows are untouched.
	UpsertFile(ctx context.Context, record *domain.FileRecord) error

	// GetFile retrieves a FileRecord without its blob.
	// Returns domain.ErrNotFound if the fingerprint is unknown.
	GetFile(ctx context.Context, fingerprint string) (*domain.FileRecord, error)

	// GetBlob retrieves only the raw content for a fingerprint.
	// Returns domain.ErrNotFound if the fingerprint is unknown.
	GetBlob(ctx context.Context, fingerprint string) ([]byte, error)

	// UpdateStatus applies a partial status update. Only supplied
	// fields change. Returns domain.ErrNotFound for unknown fingerprints.
	UpdateStatus(ctx context.Context, fingerprint string, update domain.StatusUpdate) error

	// InsertExtractedContent appends an extraction record for a file.
	// Fails with domain.ErrUnknownFingerprint if no FileRecord exists.
	InsertExtractedContent(ctx context.Context, content *domain.ExtractedContent) error

	// GetExtractedContent returns all extraction records for a file
	// in insertion order (surrogate id ascending).
	GetExtractedContent(ctx context.Context, fingerprint string) ([]domain.ExtractedContent, error)

	// InsertChunk inserts or replaces a chunk by its ID. SizeChars is
	// derived from the text by the store. Fails with
	// domain.ErrUnknownFingerprint if no FileRecord exists.
	InsertChunk(ctx context.Context, chunk *domain.Chunk) error

	// GetChunksByFile returns a file's chunks ordered by index.
	GetChunksByFile(ctx context.Context, fingerprint string) ([]domain.Chunk, error)

	// ListByStatus returns records (without blobs) in the given status,
	// most recently processed first.
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.FileRecord, error)

	// DeleteFile removes a FileRecord and cascades to its extracted
	// content and chunks, children before parent.
	DeleteFile(ctx context.Context, fingerprint string) error

	// Statistics returns aggregate counts without scanning blobs.
	Statistics(ctx context.Context) (*domain.Statistics, error)

	// Close releases the underlying database handle.
	Close() error
}
