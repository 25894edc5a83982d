// Package domain defines the core business entities for Clauselab.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded standard with its page-tagged text
//   - Citation: A (standard, clause, page) triple attached to generated content
//   - Answer, Flashcard, QuizQuestion: Artifacts produced by the model
//   - FlashcardSheetPair: The duplex print layout for flashcard export
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
