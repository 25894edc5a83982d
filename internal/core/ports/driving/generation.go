package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// ProgressFunc receives progress as per-document calls settle.
// It may be called from multiple goroutines.
type ProgressFunc func(domain.Progress)

// GenerationService produces grounded artifacts from documents.
// None of its operations fail: model errors degrade to fallbacks and are logged.
type GenerationService interface {
	// Available reports whether a model is configured.
	Available() bool

	// AnswerQuery answers a question against a combined context.
	AnswerQuery(ctx context.Context, query, combinedContext string) domain.Answer

	// Ask answers a question against the given documents.
	Ask(ctx context.Context, query string, docs []*domain.Document) domain.Answer

	// BuildFlashcards generates flashcards for one document.
	BuildFlashcards(ctx context.Context, doc *domain.Document) []domain.Flashcard

	// BuildQuiz generates quiz questions for one document.
	BuildQuiz(ctx context.Context, doc *domain.Document) []domain.QuizQuestion

	// FlashcardBatch fans out BuildFlashcards over docs, waits for all of them
	// and returns the combined cards shuffled.
	FlashcardBatch(ctx context.Context, docs []*domain.Document, progress ProgressFunc) []domain.Flashcard

	// QuizBatch fans out BuildQuiz over docs, waits for all of them and
	// returns the combined questions shuffled.
	QuizBatch(ctx context.Context, docs []*domain.Document, progress ProgressFunc) []domain.QuizQuestion
}

// ExportService lays out and writes printable flashcard sheets.
type ExportService interface {
	// Layout places cards six per sheet pair.
	Layout(cards []domain.Flashcard) []domain.FlashcardSheetPair

	// Write renders the laid-out sheets to w.
	Write(w io.Writer, cards []domain.Flashcard) error

	// Export writes the laid-out sheets to a file.
	Export(cards []domain.Flashcard, path string) error
}
