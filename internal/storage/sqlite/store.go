// Package sqlite implements the ContentStore port on an embedded
// SQLite database.
//
// Writes are serialized through a store-level mutex so that the
// check-then-write sequences (upsert, referential checks, cascade
// delete) observe a consistent view even when several goroutines
// ingest concurrently. Reads go straight to the database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta/internal/storage/sqlite/migrations"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is the SQLite-backed ContentStore.
type Store struct {
	db      *sql.DB
	path    string
	writeMu sync.Mutex
}

var _ driven.ContentStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ingesta/data/content.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ingesta", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "content.db")

	// WAL mode keeps readers unblocked while a write is in flight.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Files ====================

// UpsertFile inserts or replaces a FileRecord by fingerprint. The
// update path is an explicit check-then-write inside the write lock,
// so two concurrent upserts of the same fingerprint collapse into one
// row with last-write-wins provenance.
func (s *Store) UpsertFile(ctx context.Context, record *domain.FileRecord) error {
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

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists bool
	row := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM files WHERE fingerprint = ?)", record.Fingerprint)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("checking for existing file: %w", err)
	}

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE files SET
				source_path = ?, name = ?, extension = ?, size_bytes = ?,
				blob = ?, status = ?, model_used = ?, extractor_used = ?,
				chunk_count = ?, error_message = ?, last_modified_at = ?,
				processed_at = ?
			WHERE fingerprint = ?
		`, record.SourcePath, record.Name, record.Extension, record.SizeBytes,
			record.Blob, record.Status, nullString(record.ModelUsed),
			nullString(record.ExtractorUsed), record.ChunkCount,
			nullString(record.ErrorMessage), nullTime(record.LastModifiedAt),
			record.ProcessedAt, record.Fingerprint)
		if err != nil {
			return fmt.Errorf("updating file: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO files (fingerprint, source_path, name, extension, size_bytes,
				blob, status, model_used, extractor_used, chunk_count,
				error_message, last_modified_at, processed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, record.Fingerprint, record.SourcePath, record.Name, record.Extension,
			record.SizeBytes, record.Blob, record.Status,
			nullString(record.ModelUsed), nullString(record.ExtractorUsed),
			record.ChunkCount, nullString(record.ErrorMessage),
			nullTime(record.LastModifiedAt), record.ProcessedAt)
		if err != nil {
			return fmt.Errorf("inserting file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// fileColumns are the metadata columns of the files table, blob excluded.
const fileColumns = `fingerprint, source_path, name, extension, size_bytes,
	status, model_used, extractor_used, chunk_count, error_message,
	last_modified_at, processed_at`

// GetFile retrieves a file record without its blob.
func (s *Store) GetFile(ctx context.Context, fingerprint string) (*domain.FileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE fingerprint = ?", fingerprint)
	return scanFileRecord(row)
}

// GetBlob retrieves only the raw content for a fingerprint.
func (s *Store) GetBlob(ctx context.Context, fingerprint string) ([]byte, error) {
	var blob []byte
	row := s.db.QueryRowContext(ctx,
		"SELECT blob FROM files WHERE fingerprint = ?", fingerprint)
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning blob: %w", err)
	}
	return blob, nil
}

// UpdateStatus applies a partial status update to a file record.
// Only supplied fields change; processed_at is refreshed.
func (s *Store) UpdateStatus(ctx context.Context, fingerprint string, update domain.StatusUpdate) error {
	if !update.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, update.Status)
	}

	setClauses := []string{"status = ?", "processed_at = ?"}
	args := []any{update.Status, time.Now().UTC()}

	if update.ErrorMessage != nil {
		setClauses = append(setClauses, "error_message = ?")
		args = append(args, nullString(*update.ErrorMessage))
	}
	if update.ChunkCount != nil {
		setClauses = append(setClauses, "chunk_count = ?")
		args = append(args, *update.ChunkCount)
	}
	if update.ExtractorUsed != nil {
		setClauses = append(setClauses, "extractor_used = ?")
		args = append(args, nullString(*update.ExtractorUsed))
	}
	if update.ModelUsed != nil {
		setClauses = append(setClauses, "model_used = ?")
		args = append(args, nullString(*update.ModelUsed))
	}
	args = append(args, fingerprint)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"UPDATE files SET "+strings.Join(setClauses, ", ")+" WHERE fingerprint = ?", args...)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStatus returns records (without blobs) in the given status,
// most recently processed first.
func (s *Store) ListByStatus(ctx context.Context, status domain.Status) ([]domain.FileRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE status = ? ORDER BY processed_at DESC", status)
	if err != nil {
		return nil, fmt.Errorf("querying by status: %w", err)
	}
	defer rows.Close()

	var records []domain.FileRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanFileRecordRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return records, nil
}

// DeleteFile removes a file record and cascades to its extracted
// content and chunks. Children are deleted before the parent inside a
// single transaction, so a failure leaves the store untouched.
func (s *Store) DeleteFile(ctx context.Context, fingerprint string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM extracted_content WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("deleting extracted content: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM files WHERE fingerprint = ?", fingerprint)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// ==================== Extracted content ====================

// InsertExtractedContent appends an extraction record for a file.
func (s *Store) InsertExtractedContent(ctx context.Context, content *domain.ExtractedContent) error {
	if content == nil || content.Fingerprint == "" {
		return fmt.Errorf("%w: extracted content needs a fingerprint", domain.ErrInvalidInput)
	}

	structuredJSON, err := marshalMap(content.Structured)
	if err != nil {
		return fmt.Errorf("marshalling structured payload: %w", err)
	}

	content.ExtractedAt = time.Now().UTC()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireFile(ctx, content.Fingerprint); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO extracted_content (fingerprint, content_type, text, structured,
			extractor_name, extractor_version, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, content.Fingerprint, content.ContentType, content.Text, structuredJSON,
		nullString(content.ExtractorName), nullString(content.ExtractorVersion),
		content.ExtractedAt)
	if err != nil {
		return fmt.Errorf("inserting extracted content: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading insert id: %w", err)
	}
	content.ID = id
	return nil
}

// GetExtractedContent returns all extraction records for a file in
// insertion order.
func (s *Store) GetExtractedContent(ctx context.Context, fingerprint string) ([]domain.ExtractedContent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, content_type, text, structured,
			extractor_name, extractor_version, extracted_at
		FROM extracted_content WHERE fingerprint = ? ORDER BY id ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("querying extracted content: %w", err)
	}
	defer rows.Close()

	var contents []domain.ExtractedContent //nolint:prealloc // size unknown from query
	for rows.Next() {
		var content domain.ExtractedContent
		var text, structuredJSON, extractorName, extractorVersion sql.NullString

		if err := rows.Scan(&content.ID, &content.Fingerprint, &content.ContentType,
			&text, &structuredJSON, &extractorName, &extractorVersion,
			&content.ExtractedAt); err != nil {
			return nil, fmt.Errorf("scanning extracted content: %w", err)
		}

		content.Text = text.String
		content.ExtractorName = extractorName.String
		content.ExtractorVersion = extractorVersion.String
		if structuredJSON.Valid && structuredJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(structuredJSON.String), &content.Structured); err != nil {
				return nil, fmt.Errorf("unmarshalling structured payload: %w", err)
			}
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extracted content: %w", err)
	}
	return contents, nil
}

// ==================== Chunks ====================

// InsertChunk inserts or replaces a chunk by its ID. SizeChars is
// derived here from the text, never taken from the caller.
func (s *Store) InsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	if chunk == nil || chunk.ID == "" || chunk.Fingerprint == "" {
		return fmt.Errorf("%w: chunk needs an id and a fingerprint", domain.ErrInvalidInput)
	}

	metadataJSON, err := marshalMap(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling chunk metadata: %w", err)
	}

	chunk.SizeChars = utf8.RuneCountInString(chunk.Text)
	chunk.CreatedAt = time.Now().UTC()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.requireFile(ctx, chunk.Fingerprint); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists bool
	row := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM chunks WHERE chunk_id = ?)", chunk.ID)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("checking for existing chunk: %w", err)
	}

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE chunks SET
				fingerprint = ?, chunk_index = ?, text = ?, size_chars = ?,
				metadata = ?, embedding = ?, created_at = ?
			WHERE chunk_id = ?
		`, chunk.Fingerprint, chunk.Index, chunk.Text, chunk.SizeChars,
			metadataJSON, chunk.Embedding, chunk.CreatedAt, chunk.ID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks (chunk_id, fingerprint, chunk_index, text, size_chars,
				metadata, embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, chunk.ID, chunk.Fingerprint, chunk.Index, chunk.Text, chunk.SizeChars,
			metadataJSON, chunk.Embedding, chunk.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("writing chunk: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk: %w", err)
	}
	return nil
}

// GetChunksByFile returns a file's chunks ordered by index.
func (s *Store) GetChunksByFile(ctx context.Context, fingerprint string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, fingerprint, chunk_index, text, size_chars,
			metadata, embedding, created_at
		FROM chunks WHERE fingerprint = ? ORDER BY chunk_index ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var metadataJSON sql.NullString

		if err := rows.Scan(&chunk.ID, &chunk.Fingerprint, &chunk.Index,
			&chunk.Text, &chunk.SizeChars, &metadataJSON, &chunk.Embedding,
			&chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		if metadataJSON.Valid && metadataJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// ==================== Statistics ====================

// Statistics returns aggregate counts. Byte totals come from the
// stored size column; blobs are never read.
func (s *Store) Statistics(ctx context.Context) (*domain.Statistics, error) {
	stats := &domain.Statistics{
		CountsByStatus: make(map[domain.Status]int, len(domain.Statuses())),
	}
	for _, status := range domain.Statuses() {
		stats.CountsByStatus[status] = 0
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM files")
	if err := row.Scan(&stats.TotalFiles, &stats.TotalBytes); err != nil {
		return nil, fmt.Errorf("scanning file totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM files GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		stats.CountsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&stats.TotalChunks); err != nil {
		return nil, fmt.Errorf("scanning chunk count: %w", err)
	}

	return stats, nil
}

// ==================== Helpers ====================

// requireFile guards child inserts: the parent file record must exist.
// Callers hold the write lock, so the check cannot race a delete.
func (s *Store) requireFile(ctx context.Context, fingerprint string) error {
	var exists bool
	row := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM files WHERE fingerprint = ?)", fingerprint)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("checking parent file: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrUnknownFingerprint, fingerprint)
	}
	return nil
}

// scanFileRecord scans a single metadata row into a FileRecord.
func scanFileRecord(row *sql.Row) (*domain.FileRecord, error) {
	var record domain.FileRecord
	var modelUsed, extractorUsed, errorMessage sql.NullString
	var lastModified sql.NullTime

	if err := row.Scan(&record.Fingerprint, &record.SourcePath, &record.Name,
		&record.Extension, &record.SizeBytes, &record.Status, &modelUsed,
		&extractorUsed, &record.ChunkCount, &errorMessage, &lastModified,
		&record.ProcessedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file record: %w", err)
	}

	record.ModelUsed = modelUsed.String
	record.ExtractorUsed = extractorUsed.String
	record.ErrorMessage = errorMessage.String
	record.LastModifiedAt = lastModified.Time
	return &record, nil
}

// scanFileRecordRows scans one row of a multi-row metadata query.
func scanFileRecordRows(rows *sql.Rows) (*domain.FileRecord, error) {
	var record domain.FileRecord
	var modelUsed, extractorUsed, errorMessage sql.NullString
	var lastModified sql.NullTime

	if err := rows.Scan(&record.Fingerprint, &record.SourcePath, &record.Name,
		&record.Extension, &record.SizeBytes, &record.Status, &modelUsed,
		&extractorUsed, &record.ChunkCount, &errorMessage, &lastModified,
		&record.ProcessedAt); err != nil {
		return nil, fmt.Errorf("scanning file record: %w", err)
	}

	record.ModelUsed = modelUsed.String
	record.ExtractorUsed = extractorUsed.String
	record.ErrorMessage = errorMessage.String
	record.LastModifiedAt = lastModified.Time
	return &record, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime converts a zero time to a SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// marshalMap encodes a metadata map as JSON, nil maps included.
func marshalMap(m map[string]any) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
