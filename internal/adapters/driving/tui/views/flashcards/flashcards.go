// Package flashcards provides the flashcard study view for the TUI.
package flashcards

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// tickInterval is how often generation progress is polled.
const tickInterval = 150 * time.Millisecond

const defaultExportPath = "flashcards.pdf"

var (
	// ErrNoSession indicates the view was built without a flashcard session.
	ErrNoSession = errors.New("flashcard session is required")

	errNoModel = errors.New("no model configured; set one up in Settings")
)

// View walks the flashcard session through its phases: pick standards,
// wait for generation, then review the deck.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	documentService   driving.DocumentService
	generationService driving.GenerationService
	session           driving.FlashcardSession
	ctx               context.Context

	list      *list.DocumentList
	export    *input.PromptInput
	exporting bool
	notice    string

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new flashcards view around session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	documentService driving.DocumentService,
	generationService driving.GenerationService,
	session driving.FlashcardSession,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	export := input.NewPromptInput(s, "Save to", defaultExportPath)
	export.Blur()

	v := &View{
		styles:            s,
		keymap:            km,
		documentService:   documentService,
		generationService: generationService,
		session:           session,
		ctx:               context.Background(),
		list:              list.NewDocumentList(s),
		export:            export,
		width:             80,
		height:            24,
	}
	if session != nil {
		v.list.SetCheck(session.IsSelected)
	}
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init refreshes the standards available for selection.
func (v *View) Init() tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: errors.New("document service not available")}
		}
		docs, err := v.documentService.List(v.ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the flashcards view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.session == nil {
			if keymap.Matches(msg.String(), v.keymap.Back) {
				return v, toMenu
			}
			return v, nil
		}
		if v.exporting {
			return v.handleExportKeyMsg(msg)
		}
		switch v.session.Phase() {
		case domain.FlashcardSelecting:
			return v.handleSelectingKeyMsg(msg)
		case domain.FlashcardGenerating:
			if keymap.Matches(msg.String(), v.keymap.Back) {
				v.back()
			}
			return v, nil
		case domain.FlashcardReviewing:
			return v.handleReviewingKeyMsg(msg)
		}
		return v, nil

	case messages.DocumentsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.list.SetDocuments(msg.Documents)
		return v, nil

	case messages.GenerationTick:
		if v.session == nil || v.session.Phase() != domain.FlashcardGenerating {
			return v, nil
		}
		return v, tick(msg.Epoch)

	case messages.FlashcardsGenerated:
		v.complete(msg)
		return v, nil

	case messages.FlashcardsExported:
		v.exporting = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Path
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func toMenu() tea.Msg {
	return messages.ViewChanged{View: messages.ViewMenu}
}

// handleSelectingKeyMsg handles keys while standards are being picked.
func (v *View) handleSelectingKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, toMenu
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.Toggle):
		if doc := v.list.SelectedDocument(); doc != nil {
			if err := v.session.Toggle(doc.ID); err != nil {
				v.err = err
			}
		}
	case keymap.Matches(key, v.keymap.Generate), keymap.Matches(key, v.keymap.Select):
		return v, v.generate()
	}
	return v, nil
}

// handleReviewingKeyMsg handles keys while a deck is on screen.
func (v *View) handleReviewingKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	var err error
	switch {
	case keymap.Matches(key, v.keymap.Back), key == "b":
		v.back()
		return v, v.Init()
	case keymap.Matches(key, v.keymap.Flip):
		err = v.session.Flip()
	case keymap.Matches(key, v.keymap.Next):
		err = v.session.Next()
	case keymap.Matches(key, v.keymap.Prev):
		err = v.session.Prev()
	case keymap.Matches(key, v.keymap.Generate):
		return v, v.generate()
	case keymap.Matches(key, v.keymap.Export):
		v.exporting = true
		v.export.Reset()
		v.export.Focus()
		return v, nil
	case keymap.Matches(key, v.keymap.Cite):
		return v, v.cite()
	}
	if err != nil {
		v.err = err
	}
	return v, nil
}

// handleExportKeyMsg handles keys while the export path is typed.
func (v *View) handleExportKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.exporting = false
		v.export.Blur()
		return v, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(v.export.Value())
		if path == "" {
			path = defaultExportPath
		}
		v.export.Blur()
		return v, v.writeSheets(path)
	}
	var cmd tea.Cmd
	v.export, cmd = v.export.Update(msg)
	return v, cmd
}

// generate starts a batch for the current selection and begins polling.
func (v *View) generate() tea.Cmd {
	if v.generationService == nil || !v.generationService.Available() {
		v.err = errNoModel
		return nil
	}
	ticket, err := v.session.Begin(v.ctx)
	if err != nil {
		v.err = err
		return nil
	}
	v.err = nil
	v.notice = ""

	progress := v.session.Track(ticket.Epoch)
	run := func() tea.Msg {
		cards := v.generationService.FlashcardBatch(v.ctx, ticket.Documents, progress)
		return messages.FlashcardsGenerated{Epoch: ticket.Epoch, Cards: cards}
	}
	return tea.Batch(run, tick(ticket.Epoch))
}

func tick(epoch uint64) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return messages.GenerationTick{View: messages.ViewFlashcards, Epoch: epoch}
	})
}

// complete hands a finished batch to the session. Results of an abandoned
// request are dropped silently.
func (v *View) complete(msg messages.FlashcardsGenerated) {
	if v.session == nil {
		return
	}
	err := v.session.Complete(msg.Epoch, msg.Cards)
	switch {
	case err == nil:
		v.err = nil
	case errors.Is(err, domain.ErrStaleGeneration):
	case errors.Is(err, domain.ErrEmptyBatch):
		v.err = nil
		v.notice = "The model returned no flashcards. Try again or pick other standards."
	default:
		v.err = err
	}
}

func (v *View) back() {
	if err := v.session.Back(); err != nil {
		v.err = err
		return
	}
	v.err = nil
}

// cite opens the first citation of the current card in the viewer.
func (v *View) cite() tea.Cmd {
	card, _, _, ok := v.session.Current()
	if !ok {
		return nil
	}
	citation, ok := card.FirstCitation()
	if !ok {
		v.notice = "This card has no citation"
		return nil
	}
	return func() tea.Msg {
		return messages.CitationOpened{Citation: citation, Return: messages.ViewFlashcards}
	}
}

// writeSheets exports the deck to path.
func (v *View) writeSheets(path string) tea.Cmd {
	session := v.session
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return messages.FlashcardsExported{Path: path, Err: err}
		}
		if err := session.Export(f); err != nil {
			_ = f.Close()
			return messages.FlashcardsExported{Path: path, Err: err}
		}
		return messages.FlashcardsExported{Path: path, Err: f.Close()}
	}
}

// View renders the flashcards view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Flashcards"))
	b.WriteString("\n\n")

	if v.session == nil {
		b.WriteString(v.styles.Error.Render(ErrNoSession.Error()))
		return b.String()
	}

	switch v.session.Phase() {
	case domain.FlashcardSelecting:
		b.WriteString(v.renderSelecting())
	case domain.FlashcardGenerating:
		b.WriteString(v.renderGenerating())
	case domain.FlashcardReviewing:
		b.WriteString(v.renderReviewing())
	}

	if v.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Warning.Render(v.notice))
	}
	if v.err != nil {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	}
	return b.String()
}

func (v *View) renderSelecting() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Pick the standards to study"))
	b.WriteString("\n\n")
	b.WriteString(v.list.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d selected", len(v.session.Selected()))))
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[space] toggle  [g/enter] generate  [esc] back"))
	return b.String()
}

func (v *View) renderGenerating() string {
	p := v.session.Progress()
	var b strings.Builder
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Generating flashcards... %d/%d standards", p.Completed, p.Total)))
	b.WriteString("\n")
	b.WriteString(renderBar(p, 30))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[esc] cancel"))
	return b.String()
}

func (v *View) renderReviewing() string {
	card, idx, faceUp, ok := v.session.Current()
	if !ok {
		return v.styles.Muted.Render("No cards")
	}

	body := "Q: " + card.Question
	if faceUp {
		body = "A: " + card.Answer
	}
	cardWidth := min(60, max(20, v.width-6))
	face := v.styles.Card.Width(cardWidth).Render(body)

	var b strings.Builder
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Card %d of %d", idx+1, len(v.session.Cards()))))
	b.WriteString("\n")
	b.WriteString(face)
	b.WriteString("\n")
	for _, c := range card.Citations {
		b.WriteString("  ")
		b.WriteString(v.styles.Chip.Render(c.String()))
		b.WriteString("\n")
	}

	if v.exporting {
		b.WriteString("\n")
		b.WriteString(v.export.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[space] flip  [←/→] prev/next  [c] view source  [e] export  [g] regenerate  [esc] back"))
	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(p domain.Progress, width int) string {
	filled := 0
	if p.Total > 0 {
		filled = min(width, p.Completed*width/p.Total)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, max(4, height-10))
	v.export.SetWidth(width)
}

// Session returns the flashcard session driven by the view.
func (v *View) Session() driving.FlashcardSession {
	return v.session
}

// Exporting reports whether the export path is being typed.
func (v *View) Exporting() bool {
	return v.exporting
}

// Notice returns the latest informational message.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
