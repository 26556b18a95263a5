package catalog

import (
	"fmt"
	"os"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/dustin/go-humanize"
)

// Validate checks a file entry against the policy. The returned error
// message is the rejection reason surfaced to callers; nil means valid.
//
// Checks, in order: existence, regular-file-ness, extension membership
// (case-insensitive), and the size window. A zero-byte file is invalid
// under the default minimum of one byte.
func (c *Catalog) Validate(entry *domain.FileEntry, policy domain.Policy) error {
	if entry == nil {
		return fmt.Errorf("%w: nil file entry", domain.ErrInvalidInput)
	}
	policy = policy.Normalised()

	stat, err := os.Stat(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist")
		}
		return fmt.Errorf("stat failed: %v", err)
	}
	if !stat.Mode().IsRegular() {
		return fmt.Errorf("path is not a regular file")
	}

	if !policy.Allows(entry.Extension) {
		return fmt.Errorf("extension %q not in allowed list %v", entry.Extension, policy.AllowedExtensions)
	}

	// Size checks use the current stat, not the possibly stale entry.
	size := stat.Size()
	if size < policy.MinSizeBytes {
		return fmt.Errorf("file too small (%s < %s)",
			humanize.Bytes(uint64(size)), humanize.Bytes(uint64(policy.MinSizeBytes)))
	}
	if size > policy.MaxSizeBytes {
		return fmt.Errorf("file too large (%s > %s)",
			humanize.Bytes(uint64(size)), humanize.Bytes(uint64(policy.MaxSizeBytes)))
	}

	return nil
}
