// Package doccontent provides the page-tagged text view of one standard.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

var pageMarker = regexp.MustCompile(`^\[Page (\d+)\]`)

// View is the document content view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	document     *domain.Document
	lines        []string
	pages        []int // first wrapped line of each page, indexed by page-1
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument shows doc straight away and refetches it from the document set.
func (v *View) SetDocument(doc *domain.Document) tea.Cmd {
	v.document = doc
	v.scrollOffset = 0
	v.err = nil
	v.wrapContent()
	v.loading = true
	return v.loadContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// loadContent returns a command that fetches the current document.
func (v *View) loadContent() tea.Cmd {
	doc := v.document
	return func() tea.Msg {
		if doc == nil || v.documentService == nil {
			return messages.DocumentContentLoaded{Err: errors.New("document service not available")}
		}
		fresh, err := v.documentService.Get(v.ctx, doc.ID)
		return messages.DocumentContentLoaded{DocumentID: doc.ID, Document: fresh, Err: err}
	}
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentContentLoaded:
		v.loading = false
		if v.document != nil && msg.DocumentID != v.document.ID {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.document = msg.Document
		v.err = nil
		v.wrapContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(0, v.scrollOffset-v.visibleLines())
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.maxScrollOffset(), v.scrollOffset+v.visibleLines())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "n", "right":
		v.jumpToPage(v.CurrentPage() + 1)
	case "p", "left":
		v.jumpToPage(v.CurrentPage() - 1)
	case "v", "enter":
		if v.document == nil {
			return v, nil
		}
		citation := domain.Citation{Standard: v.document.OriginalFilename, Page: v.CurrentPage()}
		return v, func() tea.Msg {
			return messages.CitationOpened{Citation: citation, Return: messages.ViewDocContent}
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}

	return v, nil
}

// wrapContent wraps the page-tagged text to the view width and records
// where each page starts.
func (v *View) wrapContent() {
	v.lines = nil
	v.pages = nil
	if v.document == nil || v.document.PageTaggedText == "" {
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	rawLines := strings.Split(v.document.PageTaggedText, "\n")
	v.lines = make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		if m := pageMarker.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n == len(v.pages)+1 {
				v.pages = append(v.pages, len(v.lines))
			}
		}
		for len(line) > contentWidth {
			v.lines = append(v.lines, line[:contentWidth])
			line = line[contentWidth:]
		}
		v.lines = append(v.lines, line)
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// CurrentPage returns the page whose text is at the top of the view.
func (v *View) CurrentPage() int {
	page := 1
	for i, start := range v.pages {
		if start <= v.scrollOffset {
			page = i + 1
		}
	}
	return page
}

func (v *View) jumpToPage(page int) {
	if page < 1 || page > len(v.pages) {
		return
	}
	v.scrollOffset = min(v.pages[page-1], v.maxScrollOffset())
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Reserve lines for title, separator, help, and padding
	return max(1, v.height-6)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(0, len(v.lines)-v.visibleLines())
}

// View renders the document content view.
func (v *View) View() string {
	var b strings.Builder

	title := "Standard"
	if v.document != nil {
		title = v.document.DisplayName
		if title == "" {
			title = v.document.OriginalFilename
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.lines) == 0 {
		if v.loading {
			b.WriteString(v.styles.Muted.Render("Loading content..."))
		} else {
			b.WriteString(v.styles.Muted.Render("(No text extracted)"))
		}
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		if pageMarker.MatchString(v.lines[i]) {
			b.WriteString(v.styles.Subtitle.Render(v.lines[i]))
		} else {
			b.WriteString(v.styles.Normal.Render(v.lines[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Page %d of %d  Line %d-%d of %d",
		v.CurrentPage(),
		max(1, v.document.PageCount),
		v.scrollOffset+1,
		min(v.scrollOffset+visible, len(v.lines)),
		len(v.lines))))

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [n/p] page  [v] view page  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapContent()
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Lines returns the wrapped content lines.
func (v *View) Lines() []string {
	return v.lines
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
