// Package domain defines the core business entities for Ingesta.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FileRecord: A content-addressed file tracked through extraction
//   - ExtractedContent: One extraction pass over a file
//   - Chunk: A retrieval unit derived from extracted content
//   - InventoryTree: The shape of a scanned folder hierarchy
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
