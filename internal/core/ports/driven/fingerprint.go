package driven

import "io"

// Fingerprinter computes a file's content digest, its deduplication
// identity. Identical bytes always yield the identical digest
// regardless of path, name, or filesystem metadata.
type Fingerprinter interface {
	// File streams the file at path through the digest.
	File(path string) (string, error)

	// Reader streams r through the digest without loading it whole.
	Reader(r io.Reader) (string, error)

	// Bytes digests an in-memory payload.
	Bytes(b []byte) string
}
