// Package plaintext extracts text-native formats by decoding their
// bytes directly. It is the fallback backend for everything that is
// already text.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
)

// version is recorded on extraction rows.
const version = "1.0.0"

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the backend identifier.
func (e *Extractor) Name() string {
	return "plaintext"
}

// Version returns the backend version string.
func (e *Extractor) Version() string {
	return version
}

// SupportedExtensions returns the text-native extensions.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".md", ".csv", ".log", ".json", ".yaml", ".yml", ".xml", ".html"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback backend
}

// Extract reads and extracts content from a file on disk.
func (e *Extractor) Extract(ctx context.Context, path string) (*driven.ExtractionResult, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return &driven.ExtractionResult{
			Error: fmt.Sprintf("reading %s: %v", path, err),
		}, nil
	}
	return e.ExtractBlob(ctx, blob, "")
}

// ExtractBlob decodes raw bytes as text. Invalid UTF-8 and NUL bytes
// mark the blob as non-text and fail the extraction.
func (e *Extractor) ExtractBlob(_ context.Context, blob []byte, _ string) (*driven.ExtractionResult, error) {
	if bytes.ContainsRune(blob, 0) {
		return &driven.ExtractionResult{
			Error: "content contains NUL bytes, not a text file",
		}, nil
	}
	if !utf8.Valid(blob) {
		return &driven.ExtractionResult{
			Error: "content is not valid UTF-8",
		}, nil
	}

	text := string(blob)
	return &driven.ExtractionResult{
		Success: true,
		Text:    text,
		Metadata: map[string]any{
			"line_count": strings.Count(text, "\n") + 1,
			"char_count": utf8.RuneCountInString(text),
		},
	}, nil
}
