// Package services contains the application services that drive the
// ingestion pipeline: IngestService discovers, deduplicates and stores
// file content; ExtractService runs stored blobs through extraction
// backends and persists the results. Services depend only on ports,
// never on adapter packages.
package services
