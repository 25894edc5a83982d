package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

func testCards(n int) []domain.Flashcard {
	cards := make([]domain.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, domain.Flashcard{
			ID:        fmt.Sprintf("c%d", i),
			Question:  fmt.Sprintf("q%d", i),
			Answer:    fmt.Sprintf("a%d", i),
			Citations: []domain.Citation{{Standard: "Track.pdf", Clause: fmt.Sprintf("%d", i), Page: i + 1}},
		})
	}
	return cards
}

func TestLayoutSheets_SevenCards(t *testing.T) {
	pairs := LayoutSheets(testCards(7))

	require.Len(t, pairs, 2)
	assert.Len(t, pairs[0].Front.Cells, 6)
	assert.Len(t, pairs[0].Back.Cells, 6)
	assert.Len(t, pairs[1].Front.Cells, 1)
	assert.Len(t, pairs[1].Back.Cells, 1)
	assert.Equal(t, "Q: q6", pairs[1].Front.Cells[0].Text)
}

func TestLayoutSheets_Geometry(t *testing.T) {
	pairs := LayoutSheets(testCards(6))
	require.Len(t, pairs, 1)

	marginX := (210.0 - 170.0) / 3
	marginY := (297.0 - 255.0) / 4

	front := pairs[0].Front.Cells
	back := pairs[0].Back.Cells

	tests := []struct {
		index   int
		row     int
		col     int
		backCol int
	}{
		{0, 0, 0, 1},
		{1, 0, 1, 0},
		{2, 1, 0, 1},
		{5, 2, 1, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("card %d", tt.index), func(t *testing.T) {
			f := front[tt.index]
			b := back[tt.index]

			assert.Equal(t, tt.row, f.Row)
			assert.Equal(t, tt.col, f.Column)
			assert.InDelta(t, marginX+float64(tt.col)*(85+marginX), f.X, 1e-9)
			assert.InDelta(t, marginY+float64(tt.row)*(85+marginY), f.Y, 1e-9)

			assert.Equal(t, tt.row, b.Row)
			assert.Equal(t, tt.backCol, b.Column)
			assert.InDelta(t, marginX+float64(tt.backCol)*(85+marginX), b.X, 1e-9)
			assert.Equal(t, f.Y, b.Y)
		})
	}
}

func TestLayoutSheets_Text(t *testing.T) {
	cards := testCards(1)
	cards = append(cards, domain.Flashcard{Question: "bare", Answer: "no cite", Citations: []domain.Citation{}})

	pairs := LayoutSheets(cards)

	front := pairs[0].Front.Cells
	back := pairs[0].Back.Cells
	assert.Equal(t, "Q: q0", front[0].Text)
	assert.Empty(t, front[0].Footer)
	assert.Equal(t, "A: a0", back[0].Text)
	assert.Equal(t, "Track.pdf - Cl 0 (Pg 1)", back[0].Footer)
	assert.Empty(t, back[1].Footer)
}

func TestLayoutSheets_Empty(t *testing.T) {
	assert.Empty(t, LayoutSheets(nil))
}

func TestExportService_Write(t *testing.T) {
	writer := &mockSheetWriter{}
	svc := NewExportService(writer)
	var buf bytes.Buffer

	require.NoError(t, svc.Write(&buf, testCards(13)))

	assert.Len(t, writer.pairs, 3)
	assert.Equal(t, "3 sheet pairs", buf.String())
}

func TestExportService_Write_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := NewExportService(nil).Write(&buf, testCards(1))
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	err = NewExportService(&mockSheetWriter{}).Write(&buf, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	boom := errors.New("disk full")
	err = NewExportService(&mockSheetWriter{err: boom}).Write(&buf, testCards(1))
	assert.ErrorIs(t, err, boom)
}

func TestExportService_Export_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.pdf")
	svc := NewExportService(&mockSheetWriter{})

	require.NoError(t, svc.Export(testCards(2), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1 sheet pairs", string(data))
}

func TestExportService_Layout(t *testing.T) {
	svc := NewExportService(nil)
	assert.Len(t, svc.Layout(testCards(12)), 2)
}
