package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	GetFunc func(ctx context.Context, id string) (*domain.Document, error)
}

func (m *MockDocumentService) Upload(context.Context, []driving.Upload) []driving.UploadResult {
	return nil
}

func (m *MockDocumentService) List(context.Context) ([]*domain.Document, error) {
	return nil, nil
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Remove(context.Context, string) error {
	return nil
}

// taggedDocument builds a document with linesPerPage body lines on each page.
func taggedDocument(pages, linesPerPage int) *domain.Document {
	var b strings.Builder
	for p := 1; p <= pages; p++ {
		b.WriteString("\n")
		b.WriteString(domain.PageMarker(p))
		b.WriteString("\n")
		for l := 1; l <= linesPerPage; l++ {
			fmt.Fprintf(&b, "page %d line %d\n", p, l)
		}
	}
	return &domain.Document{
		ID:               "doc-1",
		DisplayName:      "ISO 9001",
		OriginalFilename: "ISO 9001.pdf",
		PageTaggedText:   b.String(),
		PageCount:        pages,
	}
}

func loadedView(t *testing.T, doc *domain.Document, height int) *View {
	t.Helper()
	mock := &MockDocumentService{
		GetFunc: func(context.Context, string) (*domain.Document, error) { return doc, nil },
	}
	view := NewView(styles.DefaultStyles(), mock)
	view.SetDimensions(80, height)
	cmd := view.SetDocument(doc)
	require.NotNil(t, cmd)
	view.Update(cmd())
	return view
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.False(t, view.ready)
	assert.Nil(t, view.Document())
	assert.Nil(t, view.Init())
}

func TestView_SetDocument(t *testing.T) {
	doc := taggedDocument(2, 3)

	view := loadedView(t, doc, 24)

	assert.Equal(t, doc, view.Document())
	assert.NoError(t, view.Err())
	assert.Contains(t, view.Lines(), "[Page 2]")
	assert.Len(t, view.pages, 2)
}

func TestView_SetDocument_FetchError(t *testing.T) {
	mock := &MockDocumentService{}
	view := NewView(nil, mock)
	doc := taggedDocument(1, 1)

	view.Update(view.SetDocument(doc)())

	assert.ErrorIs(t, view.Err(), domain.ErrNotFound)
	assert.Contains(t, view.View(), "Error:")
}

func TestView_SetDocument_NoService(t *testing.T) {
	view := NewView(nil, nil)

	msg := view.SetDocument(taggedDocument(1, 1))()

	loaded, ok := msg.(messages.DocumentContentLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_Update_IgnoresOtherDocument(t *testing.T) {
	doc := taggedDocument(1, 1)
	view := loadedView(t, doc, 24)

	view.Update(messages.DocumentContentLoaded{DocumentID: "other", Err: errors.New("late")})

	assert.NoError(t, view.Err())
	assert.Equal(t, doc, view.Document())
}

func TestView_Scroll(t *testing.T) {
	view := loadedView(t, taggedDocument(3, 10), 10)
	maxOffset := view.maxScrollOffset()
	require.Positive(t, maxOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.Equal(t, maxOffset, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, maxOffset, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, view.scrollOffset)
}

func TestView_PageJumps(t *testing.T) {
	view := loadedView(t, taggedDocument(3, 10), 10)
	assert.Equal(t, 1, view.CurrentPage())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Equal(t, 2, view.CurrentPage())

	view.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, view.CurrentPage())

	// Past the last page stays put
	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Equal(t, 3, view.CurrentPage())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	assert.Equal(t, 2, view.CurrentPage())
}

func TestView_OpenViewerAtCurrentPage(t *testing.T) {
	view := loadedView(t, taggedDocument(3, 10), 10)
	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})

	require.NotNil(t, cmd)
	opened, ok := cmd().(messages.CitationOpened)
	require.True(t, ok)
	assert.Equal(t, "ISO 9001.pdf", opened.Citation.Standard)
	assert.Equal(t, 2, opened.Citation.Page)
	assert.Equal(t, messages.ViewDocContent, opened.Return)
}

func TestView_EscGoesToDocuments(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewDocuments, changed.View)
}

func TestView_WrapsLongLines(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", PageTaggedText: strings.Repeat("x", 100), PageCount: 1}
	view := loadedView(t, doc, 24)

	for _, line := range view.Lines() {
		assert.LessOrEqual(t, len(line), 76)
	}
	assert.Len(t, view.Lines(), 2)
}

func TestView_View(t *testing.T) {
	view := loadedView(t, taggedDocument(2, 2), 30)

	output := view.View()

	assert.Contains(t, output, "ISO 9001")
	assert.Contains(t, output, "[Page 1]")
	assert.Contains(t, output, "Page 1 of 2")
	assert.Contains(t, output, "[v] view page")
}

func TestView_View_Empty(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", OriginalFilename: "scan.pdf", PageCount: 1}
	view := loadedView(t, doc, 24)

	output := view.View()

	assert.Contains(t, output, "scan.pdf")
	assert.Contains(t, output, "No text extracted")
}
