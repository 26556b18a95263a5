package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta/internal/logger"
)

// ExtractService drives tracked blobs through extraction backends and
// persists the standardized results. Each file is fully committed
// before the next one starts, so cancellation between files never
// leaves partial state.
//
// The service decides nothing about how extraction works: backends are
// selected per extension from the registry and their output is stored
// as-is, success or failure.
type ExtractService struct {
	store    driven.ContentStore
	registry driven.ExtractorRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	log      *logger.Logger
}

var _ driving.ExtractionRunner = (*ExtractService)(nil)

// NewExtractService creates an extraction service. The embedder is
// optional; when nil, chunks are stored without embeddings. A nil log
// discards.
func NewExtractService(
	store driven.ContentStore,
	registry driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	log *logger.Logger,
) *ExtractService {
	if log == nil {
		log = logger.Discard()
	}
	return &ExtractService{
		store:    store,
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
		log:      log,
	}
}

// RunPending extracts every pending file.
func (s *ExtractService) RunPending(ctx context.Context) ([]driving.ExtractionOutcome, error) {
	return s.runStatus(ctx, domain.StatusPending)
}

// RetryFailed moves failed files back through extraction.
func (s *ExtractService) RetryFailed(ctx context.Context) ([]driving.ExtractionOutcome, error) {
	return s.runStatus(ctx, domain.StatusFailed)
}

// runStatus extracts every file currently in the given status,
// checking for cancellation between files.
func (s *ExtractService) runStatus(ctx context.Context, status domain.Status) ([]driving.ExtractionOutcome, error) {
	records, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing %s files: %w", status, err)
	}
	s.log.Info("extracting %d %s file(s)", len(records), status)

	outcomes := make([]driving.ExtractionOutcome, 0, len(records))
	for i := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, s.extractRecord(ctx, &records[i]))
	}
	return outcomes, nil
}

// ExtractOne runs extraction for a single tracked file, whatever its
// current status. Completed files are re-extracted; their previous
// extraction rows remain as history.
func (s *ExtractService) ExtractOne(ctx context.Context, fingerprint string) (*driving.ExtractionOutcome, error) {
	record, err := s.store.GetFile(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", fingerprint, err)
	}

	outcome := s.extractRecord(ctx, record)
	return &outcome, nil
}

// extractRecord runs one file through the full extraction sequence:
// mark processing, extract the blob, persist content and chunks, then
// record the terminal status.
func (s *ExtractService) extractRecord(ctx context.Context, record *domain.FileRecord) driving.ExtractionOutcome {
	outcome := driving.ExtractionOutcome{
		Fingerprint: record.Fingerprint,
		Path:        record.SourcePath,
	}

	if err := s.store.UpdateStatus(ctx, record.Fingerprint, domain.StatusUpdate{
		Status: domain.StatusProcessing,
	}); err != nil {
		return s.fail(ctx, &outcome, fmt.Sprintf("marking processing: %v", err))
	}

	extractor, err := s.registry.ForExtension(record.Extension)
	if err != nil {
		return s.fail(ctx, &outcome, fmt.Sprintf("no backend for %s: %v", record.Extension, err))
	}
	name := extractor.Name()

	blob, err := s.store.GetBlob(ctx, record.Fingerprint)
	if err != nil {
		return s.failWith(ctx, &outcome, name, fmt.Sprintf("loading blob: %v", err))
	}

	s.log.Debug("extracting %s with %s", record.SourcePath, name)
	result, err := extractor.ExtractBlob(ctx, blob, record.Extension)
	if err != nil {
		return s.failWith(ctx, &outcome, name, fmt.Sprintf("extraction error: %v", err))
	}
	if !result.Success {
		return s.failWith(ctx, &outcome, name, result.Error)
	}

	if err := s.persistContent(ctx, record.Fingerprint, extractor, result); err != nil {
		return s.failWith(ctx, &outcome, name, err.Error())
	}

	chunkCount, err := s.persistChunks(ctx, record.Fingerprint, result.Text)
	if err != nil {
		return s.failWith(ctx, &outcome, name, err.Error())
	}

	if err := s.store.UpdateStatus(ctx, record.Fingerprint, domain.StatusUpdate{
		Status:        domain.StatusCompleted,
		ChunkCount:    &chunkCount,
		ExtractorUsed: &name,
	}); err != nil {
		return s.failWith(ctx, &outcome, name, fmt.Sprintf("marking completed: %v", err))
	}

	outcome.Status = domain.StatusCompleted
	outcome.ChunkCount = chunkCount
	s.log.Info("extracted %s: %d chunk(s)", record.SourcePath, chunkCount)
	return outcome
}

// persistContent stores the extraction output as content rows: one
// text row plus one row per table and image payload.
func (s *ExtractService) persistContent(ctx context.Context, fingerprint string, extractor driven.Extractor, result *driven.ExtractionResult) error {
	text := &domain.ExtractedContent{
		Fingerprint:      fingerprint,
		ContentType:      "text",
		Text:             result.Text,
		Structured:       result.Metadata,
		ExtractorName:    extractor.Name(),
		ExtractorVersion: extractor.Version(),
	}
	if err := s.store.InsertExtractedContent(ctx, text); err != nil {
		return fmt.Errorf("storing text content: %w", err)
	}

	for _, table := range result.Tables {
		row := &domain.ExtractedContent{
			Fingerprint:      fingerprint,
			ContentType:      "table",
			Structured:       table,
			ExtractorName:    extractor.Name(),
			ExtractorVersion: extractor.Version(),
		}
		if err := s.store.InsertExtractedContent(ctx, row); err != nil {
			return fmt.Errorf("storing table content: %w", err)
		}
	}

	for _, image := range result.Images {
		row := &domain.ExtractedContent{
			Fingerprint:      fingerprint,
			ContentType:      "image",
			Structured:       image,
			ExtractorName:    extractor.Name(),
			ExtractorVersion: extractor.Version(),
		}
		if err := s.store.InsertExtractedContent(ctx, row); err != nil {
			return fmt.Errorf("storing image content: %w", err)
		}
	}

	return nil
}

// persistChunks runs the post-processing pipeline over the text and
// stores the resulting chunks, embedding each one when an embedder is
// configured.
func (s *ExtractService) persistChunks(ctx context.Context, fingerprint, text string) (int, error) {
	if s.pipeline == nil {
		return 0, nil
	}

	chunks, err := s.pipeline.Process(ctx, fingerprint, text)
	if err != nil {
		return 0, fmt.Errorf("post-processing: %w", err)
	}

	for i := range chunks {
		if s.embedder != nil {
			embedding, err := s.embedder.Embed(ctx, chunks[i].Text)
			if err != nil {
				return 0, fmt.Errorf("embedding chunk %d: %w", chunks[i].Index, err)
			}
			chunks[i].Embedding = embedding
		}
		if err := s.store.InsertChunk(ctx, &chunks[i]); err != nil {
			return 0, fmt.Errorf("storing chunk %d: %w", chunks[i].Index, err)
		}
	}

	return len(chunks), nil
}

// fail records a failed outcome without touching extractor provenance.
func (s *ExtractService) fail(ctx context.Context, outcome *driving.ExtractionOutcome, reason string) driving.ExtractionOutcome {
	return s.failWith(ctx, outcome, "", reason)
}

// failWith records a failed outcome, storing the failure reason and
// the backend that was attempted, if any.
func (s *ExtractService) failWith(ctx context.Context, outcome *driving.ExtractionOutcome, extractorName, reason string) driving.ExtractionOutcome {
	s.log.Warn("extraction failed for %s: %s", outcome.Fingerprint, reason)

	update := domain.StatusUpdate{
		Status:       domain.StatusFailed,
		ErrorMessage: &reason,
	}
	if extractorName != "" {
		update.ExtractorUsed = &extractorName
	}
	if err := s.store.UpdateStatus(ctx, outcome.Fingerprint, update); err != nil {
		s.log.Warn("recording failure for %s: %v", outcome.Fingerprint, err)
	}

	outcome.Status = domain.StatusFailed
	outcome.Error = reason
	return *outcome
}
