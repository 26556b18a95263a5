// Package memory implements the ContentStore port with in-memory maps.
// It mirrors the SQLite store's semantics (referential checks, cascade
// delete, derived chunk sizes) and is used by service tests and by
// callers that want a throwaway store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
)

// Store is an in-memory ContentStore.
type Store struct {
	mu       sync.RWMutex
	files    map[string]*domain.FileRecord
	contents map[string][]domain.ExtractedContent
	chunks   map[string][]domain.Chunk
	nextID   int64
}

var _ driven.ContentStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		files:    make(map[string]*domain.FileRecord),
		contents: make(map[string][]domain.ExtractedContent),
		chunks:   make(map[string][]domain.Chunk),
	}
}

// UpsertFile inserts or replaces a FileRecord by fingerprint.
func (s *Store) UpsertFile(_ context.Context, record *domain.FileRecord) error {
	if record == nil || record.Fingerprint == "" {
		return fmt.Errorf("%w: file record needs a fingerprint", domain.ErrInvalidInput)
	}
	if record.Status == "" {
		record.Status = domain.StatusPending
	}
	if !record.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, record.Status)
	}
	record.ProcessedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.files[record.Fingerprint] = &clone
	return nil
}

// GetFile retrieves a file record without its blob.
func (s *Store) GetFile(_ context.Context, fingerprint string) (*domain.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.files[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	meta := *record
	meta.Blob = nil
	return &meta, nil
}

// GetBlob retrieves only the raw content for a fingerprint.
func (s *Store) GetBlob(_ context.Context, fingerprint string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.files[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	// Copied so callers cannot mutate the stored bytes.
	blob := make([]byte, len(record.Blob))
	copy(blob, record.Blob)
	return blob, nil
}

// UpdateStatus applies a partial status update.
func (s *Store) UpdateStatus(_ context.Context, fingerprint string, update domain.StatusUpdate) error {
	if !update.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, update.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.files[fingerprint]
	if !ok {
		return domain.ErrNotFound
	}

	record.Status = update.Status
	record.ProcessedAt = time.Now().UTC()
	if update.ErrorMessage != nil {
		record.ErrorMessage = *update.ErrorMessage
	}
	if update.ChunkCount != nil {
		record.ChunkCount = *update.ChunkCount
	}
	if update.ExtractorUsed != nil {
		record.ExtractorUsed = *update.ExtractorUsed
	}
	if update.ModelUsed != nil {
		record.ModelUsed = *update.ModelUsed
	}
	return nil
}

// InsertExtractedContent appends an extraction record for a file.
func (s *Store) InsertExtractedContent(_ context.Context, content *domain.ExtractedContent) error {
	if content == nil || content.Fingerprint == "" {
		return fmt.Errorf("%w: extracted content needs a fingerprint", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[content.Fingerprint]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownFingerprint, content.Fingerprint)
	}

	s.nextID++
	content.ID = s.nextID
	content.ExtractedAt = time.Now().UTC()
	s.contents[content.Fingerprint] = append(s.contents[content.Fingerprint], *content)
	return nil
}

// GetExtractedContent returns all extraction records for a file in
// insertion order.
func (s *Store) GetExtractedContent(_ context.Context, fingerprint string) ([]domain.ExtractedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contents := make([]domain.ExtractedContent, len(s.contents[fingerprint]))
	copy(contents, s.contents[fingerprint])
	return contents, nil
}

// InsertChunk inserts or replaces a chunk by its ID.
func (s *Store) InsertChunk(_ context.Context, chunk *domain.Chunk) error {
	if chunk == nil || chunk.ID == "" || chunk.Fingerprint == "" {
		return fmt.Errorf("%w: chunk needs an id and a fingerprint", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[chunk.Fingerprint]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownFingerprint, chunk.Fingerprint)
	}

	chunk.SizeChars = utf8.RuneCountInString(chunk.Text)
	chunk.CreatedAt = time.Now().UTC()

	existing := s.chunks[chunk.Fingerprint]
	for i := range existing {
		if existing[i].ID == chunk.ID {
			existing[i] = *chunk
			return nil
		}
		if existing[i].Index == chunk.Index {
			return fmt.Errorf("chunk index %d already taken for %s", chunk.Index, chunk.Fingerprint)
		}
	}
	s.chunks[chunk.Fingerprint] = append(existing, *chunk)
	return nil
}

// GetChunksByFile returns a file's chunks ordered by index.
func (s *Store) GetChunksByFile(_ context.Context, fingerprint string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]domain.Chunk, len(s.chunks[fingerprint]))
	copy(chunks, s.chunks[fingerprint])
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// ListByStatus returns records (without blobs) in the given status,
// most recently processed first.
func (s *Store) ListByStatus(_ context.Context, status domain.Status) ([]domain.FileRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.FileRecord
	for _, record := range s.files {
		if record.Status != status {
			continue
		}
		meta := *record
		meta.Blob = nil
		records = append(records, meta)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProcessedAt.After(records[j].ProcessedAt)
	})
	return records, nil
}

// DeleteFile removes a file record and cascades to its children.
func (s *Store) DeleteFile(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[fingerprint]; !ok {
		return domain.ErrNotFound
	}
	delete(s.chunks, fingerprint)
	delete(s.contents, fingerprint)
	delete(s.files, fingerprint)
	return nil
}

// Statistics returns aggregate counts.
func (s *Store) Statistics(_ context.Context) (*domain.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.Statistics{
		CountsByStatus: make(map[domain.Status]int, len(domain.Statuses())),
	}
	for _, status := range domain.Statuses() {
		stats.CountsByStatus[status] = 0
	}
	for _, record := range s.files {
		stats.TotalFiles++
		stats.TotalBytes += record.SizeBytes
		stats.CountsByStatus[record.Status]++
	}
	for _, chunks := range s.chunks {
		stats.TotalChunks += len(chunks)
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
