// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// CheckFunc reports whether a document is part of the current selection.
type CheckFunc func(documentID string) bool

// DocumentList displays loaded standards in a navigable list. With a
// CheckFunc set each row carries a selection checkbox.
type DocumentList struct {
	documents []*domain.Document
	checked   CheckFunc
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates a new document list component.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *DocumentList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *DocumentList) View() string {
	if len(l.documents) == 0 {
		return l.styles.Muted.Render("No standards loaded")
	}

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.documents))

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderDocument(i, l.documents[i]))
	}
	if len(l.documents) > visible {
		lines = append(lines, l.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", start+1, end, len(l.documents))))
	}

	return strings.Join(lines, "\n")
}

// renderDocument formats one row: cursor, optional checkbox, name and page count.
func (l *DocumentList) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	box := ""
	if l.checked != nil {
		box = "[ ] "
		if l.checked(doc.ID) {
			box = "[x] "
		}
	}

	name := doc.DisplayName
	if name == "" {
		name = doc.OriginalFilename
	}
	maxNameLen := l.width - 20
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	pages := fmt.Sprintf("%d pages", doc.PageCount)
	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("%s%s%-*s  %s", indicator, box, maxNameLen, name, pages))
	}
	return l.styles.Normal.Render(fmt.Sprintf("%s%s%-*s  ", indicator, box, maxNameLen, name)) +
		l.styles.Muted.Render(pages)
}

// SetDocuments replaces the listed documents, keeping the cursor in range.
func (l *DocumentList) SetDocuments(docs []*domain.Document) {
	l.documents = docs
	if l.selected >= len(docs) {
		l.selected = max(0, len(docs)-1)
	}
}

// Documents returns the listed documents.
func (l *DocumentList) Documents() []*domain.Document {
	return l.documents
}

// SetCheck enables selection checkboxes. Nil disables them.
func (l *DocumentList) SetCheck(fn CheckFunc) {
	l.checked = fn
}

// Selected returns the cursor index.
func (l *DocumentList) Selected() int {
	return l.selected
}

// SelectedDocument returns the document under the cursor, or nil if none.
func (l *DocumentList) SelectedDocument() *domain.Document {
	if l.selected < 0 || l.selected >= len(l.documents) {
		return nil
	}
	return l.documents[l.selected]
}

// MoveUp moves the cursor up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.documents)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.documents)
}

// IsEmpty returns whether the list is empty.
func (l *DocumentList) IsEmpty() bool {
	return len(l.documents) == 0
}
