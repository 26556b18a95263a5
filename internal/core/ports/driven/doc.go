// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentStore: FileRecord/ExtractedContent/Chunk persistence
//   - Catalog: Path classification, folder scanning, policy validation
//   - Fingerprinter: Content digest computation
//   - Extractor / ExtractorRegistry: Extraction backend contract
//   - PostProcessorPipeline: Chunk production from extracted text
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates chunk embeddings. Without it, chunks
//     are stored without vectors.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, catalog, or extractor package
package driven
