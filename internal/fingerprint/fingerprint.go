// Package fingerprint computes content digests used as deduplication
// identity for ingested files.
//
// The digest is MD5 over the full byte stream. That matches the
// storage keys of existing databases and is sufficient for dedup
// identity; it is NOT an integrity or tamper-detection guarantee.
// Callers needing that must layer a stronger digest on top.
package fingerprint

import (
	//nolint:gosec // dedup identity, not a security boundary
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
)

// blockSize is how many bytes are streamed through the hash at a time.
const blockSize = 8192

// Ensure MD5 implements the interface.
var _ driven.Fingerprinter = (*MD5)(nil)

// MD5 is the streaming MD5 fingerprinter.
type MD5 struct{}

// New creates a new MD5 fingerprinter.
func New() *MD5 {
	return &MD5{}
}

// File streams the file at path through the digest in fixed-size
// blocks. The whole file is never held in memory. Any read error is
// returned; a partial hash is never substituted.
func (m *MD5) File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	digest, err := m.Reader(f)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// Reader streams r through the digest one block at a time.
func (m *MD5) Reader(r io.Reader) (string, error) {
	h := md5.New() //nolint:gosec // dedup identity, not a security boundary
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return encode(h), nil
}

// Bytes digests an in-memory payload.
func (m *MD5) Bytes(b []byte) string {
	h := md5.New() //nolint:gosec // dedup identity, not a security boundary
	h.Write(b)
	return encode(h)
}

func encode(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
