package domain

import "strings"

// DefaultMinSizeBytes rejects empty files unless the policy overrides it.
const DefaultMinSizeBytes = 1

// DefaultMaxSizeBytes caps ingested files at 100 MB by default.
const DefaultMaxSizeBytes = 100 << 20

// DefaultExtensions are the file types accepted when none are configured.
func DefaultExtensions() []string {
	return []string{".pdf", ".txt", ".md", ".docx", ".doc"}
}

// Policy is the validation policy files must pass before ingestion.
type Policy struct {
	// AllowedExtensions is the extension allow-list, compared
	// case-insensitively and including the leading dot.
	AllowedExtensions []string

	// MaxSizeBytes is the inclusive upper size bound. Zero means default.
	MaxSizeBytes int64

	// MinSizeBytes is the inclusive lower size bound. Zero means default.
	MinSizeBytes int64
}

// Normalised returns a copy with defaults applied and extensions
// lower-cased for case-insensitive comparison.
func (p Policy) Normalised() Policy {
	out := Policy{
		MaxSizeBytes: p.MaxSizeBytes,
		MinSizeBytes: p.MinSizeBytes,
	}
	if out.MaxSizeBytes <= 0 {
		out.MaxSizeBytes = DefaultMaxSizeBytes
	}
	if out.MinSizeBytes <= 0 {
		out.MinSizeBytes = DefaultMinSizeBytes
	}
	exts := p.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	out.AllowedExtensions = make([]string, len(exts))
	for i, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out.AllowedExtensions[i] = ext
	}
	return out
}

// Allows reports whether the extension is on the allow-list.
// Call on a Normalised policy.
func (p Policy) Allows(extension string) bool {
	extension = strings.ToLower(extension)
	for _, ext := range p.AllowedExtensions {
		if ext == extension {
			return true
		}
	}
	return false
}
