package driven

import "context"

// EmbeddingService generates vector embeddings for chunk text.
// Optional: when nil, chunks are stored without embeddings and a later
// indexing stage may backfill them.
type EmbeddingService interface {
	// Embed returns the embedding for the given text as an opaque
	// byte payload, ready for chunk storage.
	Embed(ctx context.Context, text string) ([]byte, error)
}
