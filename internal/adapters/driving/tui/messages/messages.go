// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewDocuments lists the loaded standards.
	ViewDocuments
	// ViewDocContent shows the page-tagged text of one standard.
	ViewDocContent
	// ViewAsk is the question and answer chat.
	ViewAsk
	// ViewFlashcards is the flashcard study session.
	ViewFlashcards
	// ViewQuiz is the quiz session.
	ViewQuiz
	// ViewViewer shows a cited page.
	ViewViewer
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewAsk:
		return "ask"
	case ViewFlashcards:
		return "flashcards"
	case ViewQuiz:
		return "quiz"
	case ViewViewer:
		return "viewer"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the loaded standards.
type DocumentsLoaded struct {
	Documents []*domain.Document
	Err       error
}

// DocumentsUploaded carries the per-file outcome of an upload.
type DocumentsUploaded struct {
	Results []driving.UploadResult
	Err     error
}

// DocumentIngested is sent when the watch folder picks up a new standard.
type DocumentIngested struct {
	Filename string
	Document *domain.Document
	Err      error
}

// DocumentSelected signals a document was selected for its content view.
type DocumentSelected struct {
	Document *domain.Document
}

// DocumentContentLoaded carries a freshly fetched document for the content view.
type DocumentContentLoaded struct {
	DocumentID string
	Document   *domain.Document
	Err        error
}

// DocumentRemoved signals a document was removed from the set.
type DocumentRemoved struct {
	DocumentID string
	Err        error
}

// AnswerReceived carries the answer to a question asked in the chat.
// Resolved is aligned with Answer.Citations and reports which of them
// match a loaded standard.
type AnswerReceived struct {
	Query    string
	Answer   domain.Answer
	Resolved []bool
}

// CitationOpened asks the app to show a cited page in the viewer.
// Return is the view to go back to when the viewer closes.
type CitationOpened struct {
	Citation domain.Citation
	Return   ViewType
}

// PageLoaded carries the text of a viewer page.
type PageLoaded struct {
	Page *domain.PageView
	Err  error
}

// PageRendered signals a viewer page was saved as an image.
type PageRendered struct {
	Path string
	Err  error
}

// GenerationTick polls the progress of an in-flight generation. View names
// the study view that owns the generation.
type GenerationTick struct {
	View  ViewType
	Epoch uint64
}

// FlashcardsGenerated carries the result of a flashcard batch.
type FlashcardsGenerated struct {
	Epoch uint64
	Cards []domain.Flashcard
}

// QuizGenerated carries the result of a quiz batch.
type QuizGenerated struct {
	Epoch     uint64
	Questions []domain.QuizQuestion
}

// FlashcardsExported signals the sheets were written.
type FlashcardsExported struct {
	Path string
	Err  error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}

// ConnectionTested carries the outcome of pinging the configured model.
type ConnectionTested struct {
	Err error
}
