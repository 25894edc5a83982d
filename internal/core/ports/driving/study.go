package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// GenerationTicket identifies one generation request of a study session.
// Results carrying an older epoch are rejected with domain.ErrStaleGeneration.
type GenerationTicket struct {
	Epoch     uint64
	Documents []*domain.Document
}

// FlashcardSession is the flashcard study state machine.
type FlashcardSession interface {
	Phase() domain.FlashcardPhase
	Selected() []string
	IsSelected(documentID string) bool

	// Toggle selects or deselects a document. Only allowed while selecting.
	Toggle(documentID string) error

	// Begin moves to generating and returns the ticket for the new request.
	// Allowed while selecting (generate) or reviewing (regenerate).
	Begin(ctx context.Context) (GenerationTicket, error)

	// Track returns a progress callback that only counts for the given epoch.
	Track(epoch uint64) ProgressFunc

	// Complete applies the cards for a ticket and moves to reviewing at card 0, face down.
	Complete(epoch uint64, cards []domain.Flashcard) error

	// Generate runs Begin, the batch and Complete synchronously.
	Generate(ctx context.Context) error

	Progress() domain.Progress
	Cards() []domain.Flashcard
	Current() (card domain.Flashcard, index int, faceUp bool, ok bool)
	Flip() error
	Next() error
	Prev() error

	// Back discards the cards and returns to selecting. Results of an
	// in-flight generation become stale.
	Back() error

	// Export writes the current cards as duplex sheets.
	Export(w io.Writer) error
}

// QuizView is the current question as presented to the user.
type QuizView struct {
	Question domain.QuizQuestion
	Index    int
	Total    int
	Options  []string
	Chosen   string
	Answered bool
	IsLast   bool
}

// QuizSession is the quiz state machine.
type QuizSession interface {
	Phase() domain.QuizPhase
	Selected() []string
	IsSelected(documentID string) bool
	Toggle(documentID string) error

	// Begin moves to generating. Allowed while selecting, or from results to
	// regenerate with the same selection.
	Begin(ctx context.Context) (GenerationTicket, error)

	// Track returns a progress callback that only counts for the given epoch.
	Track(epoch uint64) ProgressFunc

	// Complete applies questions for a ticket and moves to answering at question 0.
	Complete(epoch uint64, questions []domain.QuizQuestion) error

	// Generate runs Begin, the batch and Complete synchronously.
	Generate(ctx context.Context) error

	Progress() domain.Progress
	Current() (QuizView, bool)

	// Select records an answer for the current question. The first answer is
	// final; it reports whether this call recorded anything.
	Select(option string) (bool, error)

	Next() error
	Prev() error

	// Finish scores the quiz. Only allowed at the last question.
	Finish() (domain.QuizResult, error)
	Result() (domain.QuizResult, error)

	// Retake clears answers and restarts the same questions.
	Retake() error

	// ChangeStandards returns to selecting.
	ChangeStandards() error
}
