package domain

import "sort"

// ArtifactKind identifies the kind of content a generation request produces.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactAnswer    ArtifactKind = "answer"
	ArtifactFlashcard ArtifactKind = "flashcard"
	ArtifactQuiz      ArtifactKind = "quiz"
)

// String returns the string representation.
func (k ArtifactKind) String() string {
	return string(k)
}

// Fallback answer texts.
const (
	// AnswerNotFound is used when the model returns no answer text.
	AnswerNotFound = "No information found."

	// AnswerProcessingError replaces the answer when the model call or
	// response parsing fails.
	AnswerProcessingError = "Error processing the response."

	// AnswerNoDocuments is shown when a question is asked with no standards loaded.
	AnswerNoDocuments = "Please upload at least one standard before asking a question."
)

// Answer is the response to a single free-text query.
type Answer struct {
	Text      string
	Citations []Citation
}

// Flashcard is a question/answer pair grounded in one document.
type Flashcard struct {
	ID        string
	Question  string
	Answer    string
	Citations []Citation
}

// FirstCitation returns the first citation, if any.
func (f Flashcard) FirstCitation() (Citation, bool) {
	if len(f.Citations) == 0 {
		return Citation{}, false
	}
	return f.Citations[0], true
}

// QuizQuestion is a multiple-choice question grounded in one document.
// CorrectAnswer may textually equal a distractor if the model errs; no
// de-duplication is applied.
type QuizQuestion struct {
	ID            string
	Question      string
	CorrectAnswer string
	Distractors   []string
	Citations     []Citation
}

// Options returns the correct answer and distractors as one list sorted
// lexicographically, so repeated renders of a question are stable.
func (q QuizQuestion) Options() []string {
	opts := make([]string, 0, len(q.Distractors)+1)
	opts = append(opts, q.CorrectAnswer)
	opts = append(opts, q.Distractors...)
	sort.Strings(opts)
	return opts
}

// IsCorrect reports whether answer exactly equals the correct answer.
func (q QuizQuestion) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}
