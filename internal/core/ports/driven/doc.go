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
//   - TranscriptStore: Job result persistence and structural retrieval
//   - LLMService: Extraction and answer generation
//   - Tokenizer: Prompt size estimation for the budget guard
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Query and transcript embeddings. Without it retrieval is structural only.
//   - VectorIndex: Semantic similarity search. Without it retrieval is structural only.
//   - PlanCache: Reuse of assembled plans across identical queries.
//   - FileWatcher: Directory watching for continuous ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
