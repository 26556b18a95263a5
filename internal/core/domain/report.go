package domain

// InvalidFile is a scanned file rejected by policy, with the reason.
type InvalidFile struct {
	// Path is the rejected file's path.
	Path string

	// Reason is the human-readable rejection reason.
	Reason string
}

// TrackedFile is a scanned file whose fingerprint is already stored.
type TrackedFile struct {
	// Path is the file's path in this scan.
	Path string

	// Fingerprint is the content digest.
	Fingerprint string

	// Record is the existing FileRecord, without blob.
	Record *FileRecord
}

// StoredResult is the per-file outcome of a blob store attempt.
type StoredResult struct {
	// Success reports whether the blob was persisted.
	Success bool

	// Fingerprint is the content digest. Empty if hashing failed.
	Fingerprint string

	// Path is the file's path.
	Path string

	// SizeBytes is the stored content length.
	SizeBytes int64

	// SizeFormatted is SizeBytes in human-readable form.
	SizeFormatted string

	// Error is the failure reason when Success is false.
	Error string
}

// IngestSummary counts the outcome buckets of one ingestion run.
type IngestSummary struct {
	// TotalScanned is every file the catalog produced.
	TotalScanned int

	// Valid passed policy validation.
	Valid int

	// Invalid failed policy validation.
	Invalid int

	// AlreadyTracked were deduplicated against existing fingerprints.
	AlreadyTracked int

	// NewlyStored had their blobs persisted this run.
	NewlyStored int

	// Failed could not be fingerprinted or stored.
	Failed int
}

// IngestReport is the caller-facing result of one ingestion run.
// Per-file failures never abort the run; only an invalid input path does,
// in which case Success is false and PathInfo carries the reason.
type IngestReport struct {
	// Success is false only when the input path itself was invalid.
	Success bool

	// PathInfo is the classification of the input path.
	PathInfo PathInfo

	// Summary counts each outcome bucket.
	Summary IngestSummary

	// ValidFiles passed validation, in scan order.
	ValidFiles []FileEntry

	// InvalidFiles were rejected, with reasons.
	InvalidFiles []InvalidFile

	// TrackedFiles were already present by fingerprint.
	TrackedFiles []TrackedFile

	// StoredResults holds one entry per store attempt, success or not.
	StoredResults []StoredResult
}
