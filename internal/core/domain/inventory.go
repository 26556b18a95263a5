package domain

import "time"

// PathKind classifies an input path.
type PathKind int

const (
	// PathInvalid means the path does not exist or is not a regular
	// file or directory.
	PathInvalid PathKind = iota

	// PathFile means the path is a regular file.
	PathFile

	// PathFolder means the path is a directory.
	PathFolder
)

// String returns the kind as a lower-case word.
func (k PathKind) String() string {
	switch k {
	case PathFile:
		return "file"
	case PathFolder:
		return "folder"
	default:
		return "invalid"
	}
}

// PathInfo is the result of classifying an input path.
type PathInfo struct {
	// Kind is the classification outcome.
	Kind PathKind

	// Path is the path as given by the caller.
	Path string

	// AbsolutePath is the resolved absolute path.
	AbsolutePath string

	// Reason explains why the path is invalid. Empty for valid paths.
	Reason string
}

// FileEntry describes one file found during a catalog scan.
type FileEntry struct {
	// Path is the full path to the file.
	Path string

	// Name is the base name.
	Name string

	// Extension is the lower-cased extension including the dot.
	Extension string

	// SizeBytes is the file size at scan time.
	SizeBytes int64

	// ModifiedAt is the file's modification time at scan time.
	ModifiedAt time.Time
}

// InventoryTree mirrors a scanned folder hierarchy. Each node lists its
// immediate files and subfolders; a node whose directory could not be
// read carries ScanError and empty children. Partial trees are valid.
type InventoryTree struct {
	// Path is the folder path for this node.
	Path string

	// Name is the folder base name.
	Name string

	// Files are the immediate regular files in this folder.
	Files []FileEntry

	// Subfolders are the recursively scanned child folders.
	Subfolders []InventoryTree

	// ScanError is set when this folder could not be read.
	// The sibling scan continues; only this subtree is degraded.
	ScanError string
}

// Totals folds the tree post-order into an aggregate file count and
// byte total. Degraded subtrees contribute whatever was scanned.
func (t *InventoryTree) Totals() (files int, bytes int64) {
	for i := range t.Files {
		files++
		bytes += t.Files[i].SizeBytes
	}
	for i := range t.Subfolders {
		f, b := t.Subfolders[i].Totals()
		files += f
		bytes += b
	}
	return files, bytes
}

// Flatten returns every file in the tree in depth-first order:
// a node's own files first, then each subfolder's.
func (t *InventoryTree) Flatten() []FileEntry {
	out := make([]FileEntry, 0, len(t.Files))
	out = append(out, t.Files...)
	for i := range t.Subfolders {
		out = append(out, t.Subfolders[i].Flatten()...)
	}
	return out
}
