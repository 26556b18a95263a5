package driving

import (
	"context"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

// Ingestor runs the discovery/dedup/store pipeline over a path.
type Ingestor interface {
	// Ingest classifies the path, scans and validates candidates,
	// deduplicates by fingerprint, and stores new blobs as pending.
	// Idempotent: a second run over the same path stores nothing new.
	// Per-file failures are recorded in the report, never fatal;
	// only an invalid input path fails the invocation.
	Ingest(ctx context.Context, path string) (*domain.IngestReport, error)
}
