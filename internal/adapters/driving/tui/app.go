package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/flashcards"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/quiz"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/views/viewer"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView       *menu.View
	documentsView  *documents.View
	docContentView *doccontent.View
	askView        *ask.View
	flashcardsView *flashcards.View
	quizView       *quiz.View
	viewerView     *viewer.View
	settingsView   *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// documentCount mirrors the size of the loaded set for the menu.
	documentCount int

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	var flashcardSession driving.FlashcardSession
	if ports.NewFlashcardSession != nil {
		flashcardSession = ports.NewFlashcardSession()
	}
	var quizSession driving.QuizSession
	if ports.NewQuizSession != nil {
		quizSession = ports.NewQuizSession()
	}

	h := help.New()
	h.ShowAll = true

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		help:           h,
		menuView:       menu.NewView(s),
		documentsView:  documents.NewView(s, ports.Document),
		docContentView: doccontent.NewView(s, ports.Document),
		askView:        ask.NewView(s, km, ports.Document, ports.Generation, ports.Resolver),
		flashcardsView: flashcards.NewView(s, km, ports.Document, ports.Generation, flashcardSession),
		quizView:       quiz.NewView(s, km, ports.Document, ports.Generation, quizSession),
		viewerView:     viewer.NewView(s, km, ports.Viewer),
		settingsView:   settings.NewView(s, ports.Settings),
		currentView:    messages.ViewMenu, // Start with menu
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.documentsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	a.askView.WithContext(ctx)
	a.flashcardsView.WithContext(ctx)
	a.quizView.WithContext(ctx)
	a.viewerView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("clauselab - Standards Study"),
		a.countDocuments(),
	)
}

// countDocuments lists the loaded set so the menu can show its size.
func (a *App) countDocuments() tea.Cmd {
	return func() tea.Msg {
		docs, err := a.ports.Document.List(a.ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		// Initialise views when switching to them
		switch msg.View {
		case messages.ViewMenu:
			return a, a.countDocuments()
		case messages.ViewDocuments:
			return a, a.documentsView.Init()
		case messages.ViewAsk:
			return a, a.askView.Init()
		case messages.ViewFlashcards:
			return a, a.flashcardsView.Init()
		case messages.ViewQuiz:
			return a, a.quizView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewDocContent, messages.ViewViewer, messages.ViewHelp:
			// Opened through DocumentSelected and CitationOpened
		}
		return a, nil

	case messages.DocumentsLoaded:
		if msg.Err == nil {
			a.documentCount = len(msg.Documents)
			a.menuView.SetDocumentCount(a.documentCount)
		}
		// Whichever list is on screen takes the fresh set
		switch a.currentView {
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewFlashcards:
			a.flashcardsView, cmd = a.flashcardsView.Update(msg)
		case messages.ViewQuiz:
			a.quizView, cmd = a.quizView.Update(msg)
		default:
		}
		return a, cmd

	case messages.DocumentsUploaded, messages.DocumentRemoved, messages.DocumentIngested:
		// The documents view reloads the set, which refreshes the menu count
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(msg.Document)

	case messages.DocumentContentLoaded:
		a.docContentView, cmd = a.docContentView.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.CitationOpened:
		a.currentView = messages.ViewViewer
		return a, a.viewerView.Open(msg.Citation, msg.Return)

	case messages.PageLoaded, messages.PageRendered:
		a.viewerView, cmd = a.viewerView.Update(msg)
		return a, cmd

	case messages.GenerationTick:
		// Generation keeps running when the user navigates away
		switch msg.View {
		case messages.ViewFlashcards:
			a.flashcardsView, cmd = a.flashcardsView.Update(msg)
		case messages.ViewQuiz:
			a.quizView, cmd = a.quizView.Update(msg)
		default:
		}
		return a, cmd

	case messages.FlashcardsGenerated, messages.FlashcardsExported:
		a.flashcardsView, cmd = a.flashcardsView.Update(msg)
		return a, cmd

	case messages.QuizGenerated:
		a.quizView, cmd = a.quizView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved, messages.ConnectionTested:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewFlashcards:
		a.flashcardsView, cmd = a.flashcardsView.Update(msg)
	case messages.ViewQuiz:
		a.quizView, cmd = a.quizView.Update(msg)
	case messages.ViewViewer:
		a.viewerView, cmd = a.viewerView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewFlashcards:
		return a.flashcardsView.View()
	case messages.ViewQuiz:
		return a.quizView.View()
	case messages.ViewViewer:
		return a.viewerView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.View(a.keymap))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Answers, flashcards and quiz questions cite the standard, clause and page they come from."))
	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render("Open a citation to read the page it points at."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// DocumentCount returns the number of loaded standards last seen.
func (a *App) DocumentCount() int {
	return a.documentCount
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.menuView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.flashcardsView.SetDimensions(width, height)
	a.quizView.SetDimensions(width, height)
	a.viewerView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
