package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPath indicates the input path does not exist or is
	// neither a regular file nor a directory. Fatal for the invocation.
	ErrInvalidPath = errors.New("invalid path")

	// ErrUnknownFingerprint indicates a child row references a
	// fingerprint with no FileRecord.
	ErrUnknownFingerprint = errors.New("unknown fingerprint")

	// ErrInvalidStatus indicates an unknown lifecycle status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnsupportedType indicates no extraction backend handles the
	// file's extension.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtractorUnavailable indicates an extraction backend cannot
	// run (missing dependency, unreachable service).
	ErrExtractorUnavailable = errors.New("extractor unavailable")
)
