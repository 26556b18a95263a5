package domain

import "time"

// Status is the lifecycle stage of a FileRecord.
type Status string

const (
	// StatusPending indicates the blob is stored but not yet extracted.
	StatusPending Status = "pending"

	// StatusProcessing indicates an extraction pass is in flight.
	StatusProcessing Status = "processing"

	// StatusCompleted indicates extraction finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the last extraction attempt failed.
	StatusFailed Status = "failed"
)

// Statuses lists all valid statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether a record may move from s to next.
// Terminal statuses can re-enter processing so failed (and completed)
// files can be re-extracted; there is no automatic retry in the core.
func (s Status) CanTransition(next Status) bool {
	if !next.Valid() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return next == StatusProcessing
	}
	return false
}

// FileRecord is one tracked file, identified by its content fingerprint.
// Re-ingesting identical bytes from any path upserts this record rather
// than creating a duplicate; provenance fields are last-write-wins.
type FileRecord struct {
	// Fingerprint is the content digest and primary identity.
	Fingerprint string

	// SourcePath is the path the content was last seen at.
	SourcePath string

	// Name is the base name of the source file.
	Name string

	// Extension is the lower-cased file extension including the dot.
	Extension string

	// SizeBytes is the byte length of the content.
	SizeBytes int64

	// Blob is the raw file content. Omitted by metadata-only queries.
	Blob []byte

	// Status is the current lifecycle stage.
	Status Status

	// ModelUsed records the model an extraction backend ran with, if any.
	ModelUsed string

	// ExtractorUsed records which extraction backend last ran.
	ExtractorUsed string

	// ChunkCount is the number of chunks produced by the last extraction.
	ChunkCount int

	// ErrorMessage holds the failure reason when Status is failed.
	ErrorMessage string

	// LastModifiedAt is the source file's modification time at ingest.
	LastModifiedAt time.Time

	// ProcessedAt is when the record was last written.
	ProcessedAt time.Time
}

// StatusUpdate is a partial update applied to a FileRecord.
// Nil fields are left untouched.
type StatusUpdate struct {
	// Status is the new lifecycle stage.
	Status Status

	// ErrorMessage replaces the stored error message when non-nil.
	ErrorMessage *string

	// ChunkCount replaces the stored chunk count when non-nil.
	ChunkCount *int

	// ExtractorUsed replaces the recorded extraction backend when non-nil.
	ExtractorUsed *string

	// ModelUsed replaces the recorded model name when non-nil.
	ModelUsed *string
}

// Statistics is a read-only aggregate view over the store.
// Byte totals come from stored sizes, never from scanning blobs.
type Statistics struct {
	// TotalFiles is the number of tracked FileRecords.
	TotalFiles int

	// CountsByStatus maps each status to its record count.
	CountsByStatus map[Status]int

	// TotalBytes is the sum of SizeBytes over all records.
	TotalBytes int64

	// TotalChunks is the number of stored chunks across all files.
	TotalChunks int
}
