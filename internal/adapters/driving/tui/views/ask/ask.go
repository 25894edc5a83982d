// Package ask provides the question and answer chat view for the TUI.
package ask

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// ErrNoGenerationService indicates that no generation service was provided.
var ErrNoGenerationService = errors.New("generation service is required")

// chip is one citation of the history, addressable by the chip cursor.
type chip struct {
	citation domain.Citation
	resolved bool
}

// View is the chat view: history above, question input below. Tab moves
// focus between the input and the citation chips of the answers.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.PromptInput
	statusbar *status.Bar

	documentService   driving.DocumentService
	generationService driving.GenerationService
	resolver          driving.CitationResolver
	ctx               context.Context

	history    []domain.ChatMessage
	resolved   [][]bool // per message, aligned with its citations
	chips      []chip
	chipCursor int
	focusInput bool
	thinking   bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	documentService driving.DocumentService,
	generationService driving.GenerationService,
	resolver driving.CitationResolver,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:            s,
		keymap:            km,
		input:             input.NewPromptInput(s, "Ask", "Ask about the loaded standards..."),
		statusbar:         status.NewBar(s, km),
		documentService:   documentService,
		generationService: generationService,
		resolver:          resolver,
		ctx:               context.Background(),
		width:             80,
		height:            24,
		focusInput:        true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Back) {
		if !v.focusInput {
			v.focusChat()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if msg.Type == tea.KeyTab {
		if v.focusInput && len(v.chips) > 0 {
			v.focusInput = false
			v.input.Blur()
			v.chipCursor = len(v.chips) - 1
			return v, nil
		}
		v.focusChat()
		return v, nil
	}

	if v.focusInput {
		if keymap.Matches(msg.String(), v.keymap.Submit) {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Prev), keymap.Matches(msg.String(), v.keymap.Up):
		if v.chipCursor > 0 {
			v.chipCursor--
		}
	case keymap.Matches(msg.String(), v.keymap.Next), keymap.Matches(msg.String(), v.keymap.Down):
		if v.chipCursor < len(v.chips)-1 {
			v.chipCursor++
		}
	case keymap.Matches(msg.String(), v.keymap.Select), keymap.Matches(msg.String(), v.keymap.Cite):
		return v, v.openChip()
	}
	return v, nil
}

func (v *View) focusChat() {
	v.focusInput = true
	v.input.Focus()
}

// submit sends the typed question unless one is already in flight.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" || v.thinking {
		return nil
	}
	v.input.Reset()
	v.history = append(v.history, domain.ChatMessage{Role: domain.ChatRoleUser, Text: query})
	v.resolved = append(v.resolved, nil)
	v.thinking = true
	v.err = nil
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessageCount(len(v.history))
	return v.ask(query)
}

// ask answers query against every loaded standard.
func (v *View) ask(query string) tea.Cmd {
	return func() tea.Msg {
		if v.generationService == nil {
			return messages.ErrorOccurred{Err: ErrNoGenerationService}
		}
		var docs []*domain.Document
		if v.documentService != nil {
			list, err := v.documentService.List(v.ctx)
			if err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			docs = list
		}
		answer := v.generationService.Ask(v.ctx, query, docs)
		return messages.AnswerReceived{
			Query:    query,
			Answer:   answer,
			Resolved: v.resolveAll(answer.Citations),
		}
	}
}

// resolveAll reports which citations match a loaded standard. Without a
// resolver every citation is assumed to resolve.
func (v *View) resolveAll(citations []domain.Citation) []bool {
	out := make([]bool, len(citations))
	for i, c := range citations {
		if v.resolver == nil {
			out[i] = true
			continue
		}
		_, err := v.resolver.Resolve(v.ctx, c.Standard, c.Page, c.Clause)
		out[i] = err == nil
	}
	return out
}

// handleAnswer appends the assistant message and its chips.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	v.history = append(v.history, domain.ChatMessage{
		Role:      domain.ChatRoleAssistant,
		Text:      msg.Answer.Text,
		Citations: msg.Answer.Citations,
	})
	resolved := make([]bool, len(msg.Answer.Citations))
	copy(resolved, msg.Resolved)
	v.resolved = append(v.resolved, resolved)
	for i, c := range msg.Answer.Citations {
		v.chips = append(v.chips, chip{citation: c, resolved: resolved[i]})
	}
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessageCount(len(v.history))
}

// openChip asks the app to show the cited page. Unresolved chips only
// report that the standard is not loaded.
func (v *View) openChip() tea.Cmd {
	if v.chipCursor < 0 || v.chipCursor >= len(v.chips) {
		return nil
	}
	c := v.chips[v.chipCursor]
	if !c.resolved {
		v.statusbar.SetMessage(c.citation.Standard + " is not loaded")
		return nil
	}
	v.statusbar.SetMessage("")
	return func() tea.Msg {
		return messages.CitationOpened{Citation: c.citation, Return: messages.ViewAsk}
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, len(v.history)+8)
	sections = append(sections, v.styles.Title.Render("Ask the Standards"), "")

	if len(v.history) == 0 {
		sections = append(sections, v.styles.Muted.Render("Answers cite the clause and page they come from."), "")
	}

	chipIndex := 0
	for i, m := range v.history {
		sections = append(sections, v.renderMessage(i, m, &chipIndex), "")
	}

	if v.thinking {
		sections = append(sections, v.styles.Muted.Render("…"), "")
	}

	sections = append(sections, v.input.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMessage renders one history entry; chipIndex tracks the global chip
// position so the chip under the cursor can be highlighted.
func (v *View) renderMessage(i int, m domain.ChatMessage, chipIndex *int) string {
	if m.Role == domain.ChatRoleUser {
		return v.styles.Subtitle.Render("You: ") + v.styles.Normal.Render(m.Text)
	}

	var b strings.Builder
	b.WriteString(v.styles.Normal.Width(max(20, v.width-2)).Render(m.Text))
	for j, c := range m.Citations {
		b.WriteString("\n  ")
		label := c.String()
		if i < len(v.resolved) && j < len(v.resolved[i]) && !v.resolved[i][j] {
			label += " (not loaded)"
		}
		switch {
		case !v.focusInput && *chipIndex == v.chipCursor:
			b.WriteString(v.styles.Selected.Render("> " + label))
		case i < len(v.resolved) && j < len(v.resolved[i]) && !v.resolved[i][j]:
			b.WriteString(v.styles.Muted.Render(label))
		default:
			b.WriteString(v.styles.Chip.Render(label))
		}
		*chipIndex++
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// History returns the chat messages in order.
func (v *View) History() []domain.ChatMessage {
	return v.history
}

// Thinking reports whether a question is awaiting its answer.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the history.
func (v *View) Reset() {
	v.history = nil
	v.resolved = nil
	v.chips = nil
	v.chipCursor = 0
	v.thinking = false
	v.err = nil
	v.focusChat()
	v.input.Reset()
	v.statusbar.Clear()
}

