// Package catalog discovers and validates candidate files for
// ingestion. It reads the source tree and never mutates it.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.Catalog = (*Catalog)(nil)

// Catalog is the filesystem implementation of the catalog port.
// Scans inventory every regular file; the policy is applied by
// Validate so rejected files still appear in scan totals.
type Catalog struct {
	policy domain.Policy
}

// New creates a catalog scoped to the given policy. The policy is
// normalised once here so extension checks are case-insensitive.
func New(policy domain.Policy) *Catalog {
	return &Catalog{policy: policy.Normalised()}
}

// Policy returns the normalised policy the catalog scans with.
func (c *Catalog) Policy() domain.Policy {
	return c.policy
}

// Classify determines whether the path is a file, folder, or invalid.
func (c *Catalog) Classify(path string) domain.PathInfo {
	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}
	info := domain.PathInfo{Path: path, AbsolutePath: abs}

	stat, err := os.Stat(path)
	if err != nil {
		info.Kind = domain.PathInvalid
		if os.IsNotExist(err) {
			info.Reason = "path does not exist"
		} else {
			info.Reason = err.Error()
		}
		return info
	}

	switch {
	case stat.Mode().IsRegular():
		info.Kind = domain.PathFile
	case stat.IsDir():
		info.Kind = domain.PathFolder
	default:
		info.Kind = domain.PathInvalid
		info.Reason = "path is neither a regular file nor a directory"
	}
	return info
}

// Stat returns the FileEntry for a single file path.
func (c *Catalog) Stat(path string) (*domain.FileEntry, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("stat %s: %w: not a regular file", path, domain.ErrInvalidInput)
	}
	return &domain.FileEntry{
		Path:       path,
		Name:       filepath.Base(path),
		Extension:  strings.ToLower(filepath.Ext(path)),
		SizeBytes:  stat.Size(),
		ModifiedAt: stat.ModTime(),
	}, nil
}

// ScanTree recursively builds the inventory tree rooted at folderPath.
// Every regular file is listed regardless of policy.
// An unreadable directory degrades its node with a scan error marker
// and empty children; siblings are unaffected. Cancellation is checked
// per directory, leaving a valid partial tree.
func (c *Catalog) ScanTree(ctx context.Context, folderPath string) (*domain.InventoryTree, error) {
	info := c.Classify(folderPath)
	if info.Kind != domain.PathFolder {
		return nil, fmt.Errorf("scan %s: %w: %s", folderPath, domain.ErrInvalidPath, info.Reason)
	}
	tree := c.scanNode(ctx, folderPath)
	return &tree, nil
}

func (c *Catalog) scanNode(ctx context.Context, path string) domain.InventoryTree {
	tree := domain.InventoryTree{
		Path: path,
		Name: filepath.Base(path),
	}

	if err := ctx.Err(); err != nil {
		tree.ScanError = err.Error()
		return tree
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		tree.ScanError = err.Error()
		return tree
	}

	for _, entry := range entries {
		childPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			tree.Subfolders = append(tree.Subfolders, c.scanNode(ctx, childPath))
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// File vanished between ReadDir and Info; skip it.
			continue
		}
		tree.Files = append(tree.Files, domain.FileEntry{
			Path:       childPath,
			Name:       entry.Name(),
			Extension:  strings.ToLower(filepath.Ext(entry.Name())),
			SizeBytes:  fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}

	return tree
}
