package driven

import "context"

// ExtractionResult is the standardized output every extraction backend
// produces, regardless of how it works internally.
type ExtractionResult struct {
	// Success reports whether extraction ran to completion.
	Success bool

	// Text is the extracted plain text.
	Text string

	// Tables holds structured table payloads, one per table.
	Tables []map[string]any

	// Images holds image descriptors (captions, bounding boxes, refs).
	Images []map[string]any

	// Metadata contains backend-specific extraction metadata.
	Metadata map[string]any

	// Error is the failure reason when Success is false.
	Error string
}

// Extractor is the contract every extraction backend implements.
// Backends that cannot run (missing dependency, unreachable service)
// return a result with Success=false and Error set rather than
// panicking; retry/skip policy belongs to the caller.
type Extractor interface {
	// Name returns the backend identifier recorded on extraction rows.
	Name() string

	// Version returns the backend version string.
	Version() string

	// SupportedExtensions returns the file extensions this backend
	// handles, lower-cased with the leading dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred)
	// when several backends support the same extension.
	Priority() int

	// Extract reads and extracts content from a file on disk.
	Extract(ctx context.Context, path string) (*ExtractionResult, error)

	// ExtractBlob extracts content from raw bytes using the extension
	// hint to choose a parse strategy.
	ExtractBlob(ctx context.Context, blob []byte, extensionHint string) (*ExtractionResult, error)
}

// ExtractorRegistry selects an extraction backend for a file.
type ExtractorRegistry interface {
	// ForExtension returns the highest-priority backend supporting the
	// extension, or domain.ErrUnsupportedType.
	ForExtension(extension string) (Extractor, error)

	// Register adds a backend to the registry.
	Register(e Extractor)

	// Names returns the registered backend names.
	Names() []string
}
