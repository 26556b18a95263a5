package domain

import "time"

// ExtractedContent is one extraction pass over a file, per content type.
// Records are append-only: inserted after extraction, never mutated,
// removed only by cascade when the parent FileRecord is deleted.
type ExtractedContent struct {
	// ID is the surrogate key assigned by the store; insertion order.
	ID int64

	// Fingerprint links to the parent FileRecord.
	Fingerprint string

	// ContentType describes the payload (e.g., "text", "table", "image").
	ContentType string

	// Text is the plain-text payload, if any.
	Text string

	// Structured is an arbitrary structured payload, if any.
	Structured map[string]any

	// ExtractorName identifies the backend that produced this record.
	ExtractorName string

	// ExtractorVersion is the backend version string.
	ExtractorVersion string

	// ExtractedAt is when the record was inserted.
	ExtractedAt time.Time
}

// Chunk is a retrieval unit derived from extracted content.
// Chunks for a fingerprint form a gap-tolerant but non-duplicated
// index sequence; ordering is guaranteed, contiguity is not.
type Chunk struct {
	// ID is the caller-supplied unique chunk identifier.
	ID string

	// Fingerprint links to the parent FileRecord.
	Fingerprint string

	// Index is the 0-based position within the file, unique per fingerprint.
	Index int

	// Text is the chunk content.
	Text string

	// SizeChars is derived from Text by the store, never caller-supplied.
	SizeChars int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any

	// Embedding is an opaque vector payload, optional.
	Embedding []byte

	// CreatedAt is when the chunk was inserted.
	CreatedAt time.Time
}
