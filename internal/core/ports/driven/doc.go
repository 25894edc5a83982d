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
//   - PDFEngine: Parses PDF bytes, extracts page text, renders pages
//   - DocumentStore: The session's in-memory document set
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for grounded generation
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Structured generation. Without it, answers, flashcards and quizzes are disabled.
//   - FlashcardSheetWriter: Printable export. Without it, export is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
