// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ControlLoader: Parses one benchmark document format into control records
//   - Preprocessor: Cleans and splits records into segments
//   - EmbeddingService: Generates vector embeddings for segments and queries
//   - IndexedCorpus: Append-only similarity store of segments
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, queries return a labelled error answer.
//   - PromptStore: User-editable prompt templates. Without it, the built-in template is used.
//   - TokenCounter: Context budgeting. Without it, an approximate character count is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or postprocessor package
package driven
