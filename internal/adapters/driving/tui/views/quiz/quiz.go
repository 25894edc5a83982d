// Package quiz provides the multiple-choice quiz view for the TUI.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

const tickInterval = 150 * time.Millisecond

var (
	// ErrNoSession indicates the view was built without a quiz session.
	ErrNoSession = errors.New("quiz session is required")

	errNoModel = errors.New("no model configured; set one up in Settings")
)

// View drives a quiz session: pick standards, answer each question once,
// then review the score.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	documentService   driving.DocumentService
	generationService driving.GenerationService
	session           driving.QuizSession
	ctx               context.Context

	list         *list.DocumentList
	reviewCursor int
	notice       string

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new quiz view around session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	documentService driving.DocumentService,
	generationService driving.GenerationService,
	session driving.QuizSession,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:            s,
		keymap:            km,
		documentService:   documentService,
		generationService: generationService,
		session:           session,
		ctx:               context.Background(),
		list:              list.NewDocumentList(s),
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

// Update handles messages for the quiz view.
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
		switch v.session.Phase() {
		case domain.QuizSelecting:
			return v.handleSelectingKeyMsg(msg)
		case domain.QuizGenerating:
			if keymap.Matches(msg.String(), v.keymap.Back) {
				v.changeStandards()
			}
			return v, nil
		case domain.QuizAnswering:
			return v.handleAnsweringKeyMsg(msg)
		case domain.QuizResults:
			return v.handleResultsKeyMsg(msg)
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
		if v.session == nil || v.session.Phase() != domain.QuizGenerating {
			return v, nil
		}
		return v, tick(msg.Epoch)

	case messages.QuizGenerated:
		v.complete(msg)
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

// handleAnsweringKeyMsg handles keys on a question. Digits pick an option.
func (v *View) handleAnsweringKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	var err error
	switch {
	case keymap.Matches(key, v.keymap.Back):
		v.changeStandards()
		return v, v.Init()
	case keymap.Matches(key, v.keymap.Next):
		err = v.session.Next()
	case keymap.Matches(key, v.keymap.Prev):
		err = v.session.Prev()
	case keymap.Matches(key, v.keymap.Cite):
		if current, ok := v.session.Current(); ok {
			return v, v.cite(current.Question)
		}
	case key == "f" || keymap.Matches(key, v.keymap.Select):
		v.finish()
	default:
		v.choose(key)
	}
	if err != nil {
		v.err = err
	}
	return v, nil
}

// choose records the option numbered by key, if it names one.
func (v *View) choose(key string) {
	n, convErr := strconv.Atoi(key)
	if convErr != nil {
		return
	}
	current, ok := v.session.Current()
	if !ok || n < 1 || n > len(current.Options) {
		return
	}
	if _, err := v.session.Select(current.Options[n-1]); err != nil {
		v.err = err
		return
	}
	v.err = nil
}

func (v *View) finish() {
	current, ok := v.session.Current()
	if !ok {
		return
	}
	if !current.IsLast {
		v.notice = "Finish is available at the last question"
		return
	}
	if _, err := v.session.Finish(); err != nil {
		v.err = err
		return
	}
	v.notice = ""
	v.reviewCursor = 0
}

func (v *View) handleResultsKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, toMenu
	case keymap.Matches(key, v.keymap.Up):
		if v.reviewCursor > 0 {
			v.reviewCursor--
		}
	case keymap.Matches(key, v.keymap.Down):
		if result, err := v.session.Result(); err == nil && v.reviewCursor < len(result.Review)-1 {
			v.reviewCursor++
		}
	case keymap.Matches(key, v.keymap.Cite), keymap.Matches(key, v.keymap.Select):
		result, err := v.session.Result()
		if err != nil || v.reviewCursor >= len(result.Review) {
			return v, nil
		}
		return v, v.cite(result.Review[v.reviewCursor].Question)
	case key == "r":
		if err := v.session.Retake(); err != nil {
			v.err = err
		}
	case key == "s":
		v.changeStandards()
		return v, v.Init()
	case keymap.Matches(key, v.keymap.Generate):
		return v, v.generate()
	}
	return v, nil
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
		questions := v.generationService.QuizBatch(v.ctx, ticket.Documents, progress)
		return messages.QuizGenerated{Epoch: ticket.Epoch, Questions: questions}
	}
	return tea.Batch(run, tick(ticket.Epoch))
}

func tick(epoch uint64) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return messages.GenerationTick{View: messages.ViewQuiz, Epoch: epoch}
	})
}

func (v *View) complete(msg messages.QuizGenerated) {
	if v.session == nil {
		return
	}
	err := v.session.Complete(msg.Epoch, msg.Questions)
	switch {
	case err == nil:
		v.err = nil
	case errors.Is(err, domain.ErrStaleGeneration):
	case errors.Is(err, domain.ErrEmptyBatch):
		v.err = nil
		v.notice = "The model returned no questions. Try again or pick other standards."
	default:
		v.err = err
	}
}

func (v *View) changeStandards() {
	if err := v.session.ChangeStandards(); err != nil {
		v.err = err
		return
	}
	v.err = nil
	v.notice = ""
}

// cite opens the first citation of q in the viewer.
func (v *View) cite(q domain.QuizQuestion) tea.Cmd {
	if len(q.Citations) == 0 {
		v.notice = "This question has no citation"
		return nil
	}
	citation := q.Citations[0]
	return func() tea.Msg {
		return messages.CitationOpened{Citation: citation, Return: messages.ViewQuiz}
	}
}

// View renders the quiz view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Quiz"))
	b.WriteString("\n\n")

	if v.session == nil {
		b.WriteString(v.styles.Error.Render(ErrNoSession.Error()))
		return b.String()
	}

	switch v.session.Phase() {
	case domain.QuizSelecting:
		b.WriteString(v.renderSelecting())
	case domain.QuizGenerating:
		p := v.session.Progress()
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Generating questions... %d/%d standards", p.Completed, p.Total)))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] cancel"))
	case domain.QuizAnswering:
		b.WriteString(v.renderQuestion())
	case domain.QuizResults:
		b.WriteString(v.renderResults())
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
	b.WriteString(v.styles.Subtitle.Render("Pick the standards to be quizzed on"))
	b.WriteString("\n\n")
	b.WriteString(v.list.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d selected", len(v.session.Selected()))))
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[space] toggle  [g/enter] generate  [esc] back"))
	return b.String()
}

func (v *View) renderQuestion() string {
	current, ok := v.session.Current()
	if !ok {
		return v.styles.Muted.Render("No questions")
	}
	q := current.Question
	textWidth := max(20, v.width-4)

	var b strings.Builder
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Question %d of %d", current.Index+1, current.Total)))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Width(textWidth).Render(q.Question))
	b.WriteString("\n\n")

	for i, opt := range current.Options {
		line := fmt.Sprintf("%d) %s", i+1, opt)
		switch {
		case current.Answered && q.IsCorrect(opt):
			b.WriteString(v.styles.Success.Render("✓ " + line))
		case current.Answered && opt == current.Chosen:
			b.WriteString(v.styles.Error.Render("✗ " + line))
		default:
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if current.Answered {
		b.WriteString("\n")
		if q.IsCorrect(current.Chosen) {
			b.WriteString(v.styles.Success.Render("Correct"))
		} else {
			b.WriteString(v.styles.Error.Render("Incorrect. The answer is: " + q.CorrectAnswer))
		}
		b.WriteString("\n")
		for _, c := range q.Citations {
			b.WriteString("  ")
			b.WriteString(v.styles.Chip.Render(c.String()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	help := "[1-9] answer  [←/→] prev/next  [c] view source  [esc] change standards"
	if current.IsLast {
		help = "[1-9] answer  [f/enter] finish  [←] prev  [c] view source  [esc] change standards"
	}
	b.WriteString(v.styles.Help.Render(help))
	return b.String()
}

func (v *View) renderResults() string {
	result, err := v.session.Result()
	if err != nil {
		return v.styles.Error.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Score: %d%%  (%d of %d correct)", result.Score, result.CorrectCount, result.Total)))
	b.WriteString("\n\n")

	for i, item := range result.Review {
		mark := v.styles.Error.Render("✗")
		if item.Correct {
			mark = v.styles.Success.Render("✓")
		}
		prefix := "  "
		if i == v.reviewCursor {
			prefix = "> "
		}
		b.WriteString(prefix + mark + " " + v.styles.Normal.Render(item.Question.Question))
		b.WriteString("\n")

		chosen := "(unanswered)"
		if item.Answered {
			chosen = item.Chosen
		}
		b.WriteString(v.styles.Muted.Render("    Your answer: " + chosen))
		b.WriteString("\n")
		if !item.Correct {
			b.WriteString(v.styles.Muted.Render("    Correct answer: " + item.Question.CorrectAnswer))
			b.WriteString("\n")
		}
		for _, c := range item.Question.Citations {
			b.WriteString("    ")
			b.WriteString(v.styles.Chip.Render(c.String()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] select  [c] view source  [r] retake  [g] new questions  [s] change standards  [esc] menu"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, max(4, height-10))
}

// Session returns the quiz session driven by the view.
func (v *View) Session() driving.QuizSession {
	return v.session
}

// Notice returns the latest informational message.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
