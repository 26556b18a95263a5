package driven

import (
	"context"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// Catalog discovers and validates candidate files on the filesystem.
// The catalog never mutates the source tree.
type Catalog interface {
	// Classify determines whether the path is a file, a folder, or
	// invalid. Invalid results carry an explanatory reason.
	Classify(path string) domain.PathInfo

	// ScanTree recursively builds an inventory tree for a folder.
	// Unreadable subtrees are degraded with a scan error marker, not
	// fatal. Cancellation is checked between directories.
	ScanTree(ctx context.Context, folderPath string) (*domain.InventoryTree, error)

	// Stat returns the FileEntry for a single file path.
	Stat(path string) (*domain.FileEntry, error)

	// Validate checks a file entry against the policy. A nil error
	// means valid; otherwise the error message is the rejection reason.
	Validate(entry *domain.FileEntry, policy domain.Policy) error
}
