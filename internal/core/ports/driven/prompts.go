package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSystem is the grounding directive shared by every generation call.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptAnswer wraps a question and its combined document context.
	// The template expects %s (context) then %s (question).
	PromptAnswer = "answer"

	// PromptFlashcards asks for a batch of flashcards from one document.
	// The template expects %s (filename), %d (count) and %s (text).
	PromptFlashcards = "flashcards"

	// PromptFlashcardsSystem is appended to the system directive for flashcards.
	// The template expects %d (count).
	PromptFlashcardsSystem = "flashcards_system"

	// PromptQuiz asks for a batch of multiple-choice questions from one document.
	// The template expects %s (filename), %d (count) and %s (text).
	PromptQuiz = "quiz"

	// PromptQuizSystem is appended to the system directive for quizzes.
	// This prompt has no format placeholders.
	PromptQuizSystem = "quiz_system"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// If no store is set, the service uses built-in default prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
