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
//   - DocumentSource: Read access to applicant documents (external collaborator)
//   - KeywordIndex: BM25 keyword search. Always available.
//   - VectorStore: In-memory embedding storage with cosine similarity search
//   - ChunkProcessor: Splits documents into typed chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, scoring is keyword-only.
//   - MorphAnalyzer: Language-aware tokenization. Without it, the tokenizer falls back to
//     simple whitespace splitting.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
