package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta/internal/logger"
)

const (
	// defaultFingerprintWorkers bounds concurrent hashing goroutines.
	defaultFingerprintWorkers = 4

	// defaultDedupCacheSize bounds the fingerprint metadata cache.
	defaultDedupCacheSize = 1024
)

// IngestService runs the discovery/dedup/store pipeline.
//
// Fingerprinting is parallel; store writes happen sequentially in scan
// order so duplicate content within one run collapses deterministically
// onto the first occurrence. A small LRU cache keeps recently seen
// fingerprint metadata so rescans of unchanged trees skip the store.
// Cached entries live for the service's lifetime and are not
// invalidated by deletes made directly on the store; a long-lived
// process that deletes records needs a fresh service to re-ingest
// the same content.
type IngestService struct {
	store         driven.ContentStore
	catalog       driven.Catalog
	fingerprinter driven.Fingerprinter
	policy        domain.Policy
	log           *logger.Logger

	workers int

	cacheMu sync.Mutex
	cache   *lru.Cache[string, *domain.FileRecord]
}

var _ driving.Ingestor = (*IngestService)(nil)

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithFingerprintWorkers sets the number of concurrent hashing workers.
func WithFingerprintWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewIngestService creates an ingestion service. A nil log discards.
func NewIngestService(
	store driven.ContentStore,
	catalog driven.Catalog,
	fingerprinter driven.Fingerprinter,
	policy domain.Policy,
	log *logger.Logger,
	opts ...IngestOption,
) (*IngestService, error) {
	if log == nil {
		log = logger.Discard()
	}

	cache, err := lru.New[string, *domain.FileRecord](defaultDedupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating dedup cache: %w", err)
	}

	s := &IngestService{
		store:         store,
		catalog:       catalog,
		fingerprinter: fingerprinter,
		policy:        policy.Normalised(),
		log:           log,
		workers:       defaultFingerprintWorkers,
		cache:         cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest classifies the path, scans and validates candidates,
// deduplicates by fingerprint, and stores new blobs as pending.
// Per-file failures land in the report; only an invalid input path or
// cancellation fails the invocation.
func (s *IngestService) Ingest(ctx context.Context, path string) (*domain.IngestReport, error) {
	report := &domain.IngestReport{Success: true}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.PathInfo = s.catalog.Classify(path)
	if report.PathInfo.Kind == domain.PathInvalid {
		report.Success = false
		return report, fmt.Errorf("%w: %s", domain.ErrInvalidPath, report.PathInfo.Reason)
	}

	entries, err := s.discover(ctx, report.PathInfo)
	if err != nil {
		report.Success = false
		return report, err
	}
	report.Summary.TotalScanned = len(entries)
	s.log.Info("scanned %d candidate file(s) under %s", len(entries), path)

	// Validation pass, in scan order.
	for _, entry := range entries {
		if err := s.catalog.Validate(&entry, s.policy); err != nil {
			report.InvalidFiles = append(report.InvalidFiles, domain.InvalidFile{
				Path:   entry.Path,
				Reason: err.Error(),
			})
			continue
		}
		report.ValidFiles = append(report.ValidFiles, entry)
	}
	report.Summary.Valid = len(report.ValidFiles)
	report.Summary.Invalid = len(report.InvalidFiles)

	fingerprints := s.fingerprintAll(ctx, report.ValidFiles)

	// Store pass stays sequential: the first occurrence of a
	// fingerprint wins. Later occurrences within the same run carry no
	// new content and are collapsed silently; they count as valid but
	// fall in no other bucket.
	storedThisRun := make(map[string]string)
	for i, entry := range report.ValidFiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fp := fingerprints[i]
		if fp.err == nil {
			if first, dup := storedThisRun[fp.digest]; dup {
				s.log.Debug("duplicate content: %s matches %s", entry.Path, first)
				continue
			}
		}
		s.storeOne(ctx, report, entry, fp, storedThisRun)
	}

	s.log.Info("ingest finished: %d new, %d tracked, %d invalid, %d failed",
		report.Summary.NewlyStored, report.Summary.AlreadyTracked,
		report.Summary.Invalid, report.Summary.Failed)
	return report, nil
}

// discover turns the classified path into a flat list of file entries.
func (s *IngestService) discover(ctx context.Context, info domain.PathInfo) ([]domain.FileEntry, error) {
	if info.Kind == domain.PathFile {
		entry, err := s.catalog.Stat(info.AbsolutePath)
		if err != nil {
			return nil, fmt.Errorf("reading file entry: %w", err)
		}
		return []domain.FileEntry{*entry}, nil
	}

	tree, err := s.catalog.ScanTree(ctx, info.AbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("scanning folder: %w", err)
	}
	return tree.Flatten(), nil
}

// fingerprintResult carries one file's digest or the hashing failure.
type fingerprintResult struct {
	digest string
	err    error
}

// fingerprintAll hashes the entries concurrently, preserving order.
// Hashing failures are per-file results, not group failures.
func (s *IngestService) fingerprintAll(ctx context.Context, entries []domain.FileEntry) []fingerprintResult {
	results := make([]fingerprintResult, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, entry := range entries {
		if ctx.Err() != nil {
			results[i].err = ctx.Err()
			continue
		}
		i, entry := i, entry
		g.Go(func() error {
			digest, err := s.fingerprinter.File(entry.Path)
			results[i] = fingerprintResult{digest: digest, err: err}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers only report per-file results

	return results
}

// storeOne deduplicates and stores a single validated file.
func (s *IngestService) storeOne(ctx context.Context, report *domain.IngestReport, entry domain.FileEntry, fp fingerprintResult, storedThisRun map[string]string) {
	if fp.err != nil {
		s.log.Warn("fingerprinting %s: %v", entry.Path, fp.err)
		report.StoredResults = append(report.StoredResults, domain.StoredResult{
			Path:  entry.Path,
			Error: fp.err.Error(),
		})
		report.Summary.Failed++
		return
	}

	if existing := s.lookup(ctx, fp.digest); existing != nil {
		s.log.Debug("already tracked: %s (%s)", entry.Path, fp.digest)
		report.TrackedFiles = append(report.TrackedFiles, domain.TrackedFile{
			Path:        entry.Path,
			Fingerprint: fp.digest,
			Record:      existing,
		})
		report.Summary.AlreadyTracked++
		return
	}

	blob, err := os.ReadFile(entry.Path)
	if err != nil {
		s.log.Warn("reading %s: %v", entry.Path, err)
		report.StoredResults = append(report.StoredResults, domain.StoredResult{
			Fingerprint: fp.digest,
			Path:        entry.Path,
			Error:       fmt.Sprintf("reading file: %v", err),
		})
		report.Summary.Failed++
		return
	}

	record := &domain.FileRecord{
		Fingerprint:    fp.digest,
		SourcePath:     entry.Path,
		Name:           entry.Name,
		Extension:      entry.Extension,
		SizeBytes:      int64(len(blob)),
		Blob:           blob,
		Status:         domain.StatusPending,
		LastModifiedAt: entry.ModifiedAt,
	}
	if err := s.store.UpsertFile(ctx, record); err != nil {
		s.log.Warn("storing %s: %v", entry.Path, err)
		report.StoredResults = append(report.StoredResults, domain.StoredResult{
			Fingerprint: fp.digest,
			Path:        entry.Path,
			SizeBytes:   record.SizeBytes,
			Error:       fmt.Sprintf("storing blob: %v", err),
		})
		report.Summary.Failed++
		return
	}

	s.remember(fp.digest, record)
	storedThisRun[fp.digest] = entry.Path
	report.StoredResults = append(report.StoredResults, domain.StoredResult{
		Success:       true,
		Fingerprint:   fp.digest,
		Path:          entry.Path,
		SizeBytes:     record.SizeBytes,
		SizeFormatted: humanize.Bytes(uint64(record.SizeBytes)), //nolint:gosec // sizes are non-negative
	})
	report.Summary.NewlyStored++
	s.log.Debug("stored %s as %s", entry.Path, fp.digest)
}

// lookup resolves a fingerprint to its stored record via the cache,
// falling back to the store. Returns nil when untracked.
func (s *IngestService) lookup(ctx context.Context, fingerprint string) *domain.FileRecord {
	s.cacheMu.Lock()
	cached, ok := s.cache.Get(fingerprint)
	s.cacheMu.Unlock()
	if ok {
		return cached
	}

	record, err := s.store.GetFile(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("looking up %s: %v", fingerprint, err)
		}
		return nil
	}

	s.remember(fingerprint, record)
	return record
}

// remember caches a stored record's metadata, blob excluded.
func (s *IngestService) remember(fingerprint string, record *domain.FileRecord) {
	meta := *record
	meta.Blob = nil

	s.cacheMu.Lock()
	s.cache.Add(fingerprint, &meta)
	s.cacheMu.Unlock()
}
