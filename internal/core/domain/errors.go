package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrIngestion indicates a file could not be turned into a Document.
	// It is reported per file and never blocks other uploads.
	ErrIngestion = errors.New("ingestion failed")

	// ErrDocumentParse indicates the PDF engine could not parse the bytes.
	ErrDocumentParse = errors.New("document parse failed")

	// ErrPageOutOfRange indicates a page number outside 1..pageCount.
	ErrPageOutOfRange = errors.New("page out of range")

	// Generation Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answering, flashcards and quizzes are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrModel indicates a model call failed or returned unusable output.
	// It degrades to a fallback artifact and is never surfaced to a session.
	ErrModel = errors.New("model error")

	// ErrStaleGeneration indicates a generation result arrived after a newer
	// request superseded it.
	ErrStaleGeneration = errors.New("stale generation result")

	// ErrNoDocumentsSelected indicates generation was requested with an empty selection.
	ErrNoDocumentsSelected = errors.New("no documents selected")

	// Resolution and Session Errors.

	// ErrResolutionMiss indicates a citation does not match any loaded document.
	ErrResolutionMiss = errors.New("citation does not match any document")

	// ErrInvalidTransition indicates a session action not allowed in the current phase.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrEmptyBatch indicates a generation batch produced no items at all.
	ErrEmptyBatch = errors.New("generation produced no items")

	// ErrRateLimited indicates the model API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
