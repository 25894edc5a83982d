package domain

// FlashcardPhase is the state of a flashcard study session.
type FlashcardPhase string

// Flashcard session phases.
const (
	FlashcardSelecting  FlashcardPhase = "selecting"
	FlashcardGenerating FlashcardPhase = "generating"
	FlashcardReviewing  FlashcardPhase = "reviewing"
)

// String returns the string representation.
func (p FlashcardPhase) String() string {
	return string(p)
}

// QuizPhase is the state of a quiz session.
type QuizPhase string

// Quiz session phases.
const (
	QuizSelecting  QuizPhase = "selecting"
	QuizGenerating QuizPhase = "generating"
	QuizAnswering  QuizPhase = "answering"
	QuizResults    QuizPhase = "results"
)

// String returns the string representation.
func (p QuizPhase) String() string {
	return string(p)
}

// Progress tracks settled per-document generation calls.
type Progress struct {
	Completed int
	Total     int
}

// Done reports whether every call has settled.
func (p Progress) Done() bool {
	return p.Completed >= p.Total
}

// QuizReviewItem is one row of the quiz results review.
type QuizReviewItem struct {
	Question QuizQuestion
	Chosen   string
	Answered bool
	Correct  bool
}

// QuizResult summarises a finished quiz.
type QuizResult struct {
	Score        int
	CorrectCount int
	Total        int
	Review       []QuizReviewItem
}

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in the ask-a-question history.
type ChatMessage struct {
	Role      ChatRole
	Text      string
	Citations []Citation
}
