package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
)

func sampleDocuments() []*domain.Document {
	return []*domain.Document{
		{ID: "d1", DisplayName: "ISO 9001", OriginalFilename: "ISO 9001.pdf", PageCount: 12},
		{ID: "d2", DisplayName: "ISO 14001", OriginalFilename: "ISO 14001.pdf", PageCount: 30},
		{ID: "d3", OriginalFilename: "untitled.pdf", PageCount: 1},
	}
}

func TestNewDocumentList(t *testing.T) {
	l := NewDocumentList(styles.DefaultStyles())

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Selected())
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.Init())
}

func TestNewDocumentList_NilStyles(t *testing.T) {
	l := NewDocumentList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
}

func TestDocumentList_SetDocuments(t *testing.T) {
	l := NewDocumentList(nil)

	l.SetDocuments(sampleDocuments())

	assert.Equal(t, 3, l.Count())
	assert.False(t, l.IsEmpty())
	assert.Equal(t, "d1", l.SelectedDocument().ID)
}

func TestDocumentList_SetDocuments_ClampsCursor(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())
	l.MoveDown()
	l.MoveDown()

	l.SetDocuments(sampleDocuments()[:1])

	assert.Equal(t, 0, l.Selected())

	l.SetDocuments(nil)
	assert.Equal(t, 0, l.Selected())
	assert.Nil(t, l.SelectedDocument())
}

func TestDocumentList_Navigation(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
}

func TestDocumentList_View_Empty(t *testing.T) {
	l := NewDocumentList(nil)

	assert.Contains(t, l.View(), "No standards loaded")
}

func TestDocumentList_View_WithDocuments(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())

	view := l.View()

	assert.Contains(t, view, "ISO 9001")
	assert.Contains(t, view, "30 pages")
	assert.Contains(t, view, "untitled.pdf")
	assert.Contains(t, view, ">")
	assert.NotContains(t, view, "[ ]")
}

func TestDocumentList_View_Checkboxes(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())
	l.SetCheck(func(id string) bool { return id == "d2" })

	view := l.View()

	assert.Contains(t, view, "[x] ")
	assert.Contains(t, view, "[ ] ")
}

func TestDocumentList_View_ScrollIndicator(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDimensions(80, 3)
	l.SetDocuments(sampleDocuments())

	view := l.View()

	assert.Contains(t, view, "[1-1 of 3]")
}

func TestDocumentList_View_LongName(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDimensions(30, 10)
	l.SetDocuments([]*domain.Document{
		{ID: "d1", DisplayName: "A very long standard name that cannot fit the row"},
	})

	assert.Contains(t, l.View(), "...")
}
