package services

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// DefaultExportFilename is used when no export path is given.
const DefaultExportFilename = "flashcards.pdf"

// Sheet margins: the space left by the cards split evenly between and around them.
const (
	sheetMarginX = (domain.SheetWidthMM - domain.SheetColumns*domain.CardSizeMM) / (domain.SheetColumns + 1)
	sheetMarginY = (domain.SheetHeightMM - domain.SheetRows*domain.CardSizeMM) / (domain.SheetRows + 1)
)

// ExportService lays flashcards out as duplex sheet pairs and hands them to a
// sheet writer.
type ExportService struct {
	writer driven.FlashcardSheetWriter
}

// NewExportService creates an export service backed by the given writer.
func NewExportService(writer driven.FlashcardSheetWriter) *ExportService {
	return &ExportService{writer: writer}
}

// Layout places cards six per sheet pair.
func (s *ExportService) Layout(cards []domain.Flashcard) []domain.FlashcardSheetPair {
	return LayoutSheets(cards)
}

// Write renders the laid-out sheets to w.
func (s *ExportService) Write(w io.Writer, cards []domain.Flashcard) error {
	if s.writer == nil {
		return domain.ErrNotImplemented
	}
	if len(cards) == 0 {
		return fmt.Errorf("%w: no flashcards to export", domain.ErrInvalidInput)
	}
	pairs := LayoutSheets(cards)
	logger.Debug("exporting %d cards on %d sheet pairs", len(cards), len(pairs))
	return s.writer.WriteSheets(w, pairs)
}

// Export writes the laid-out sheets to path, or DefaultExportFilename when
// path is empty.
func (s *ExportService) Export(cards []domain.Flashcard, path string) (err error) {
	if path == "" {
		path = DefaultExportFilename
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return s.Write(f, cards)
}

// LayoutSheets places cards row-major on a 2x3 grid. The back sheet carries
// the answers with columns mirrored so that each answer lands behind its
// question when the sheet is flipped along its long edge.
func LayoutSheets(cards []domain.Flashcard) []domain.FlashcardSheetPair {
	pairs := make([]domain.FlashcardSheetPair, 0, (len(cards)+domain.CardsPerSheetPair-1)/domain.CardsPerSheetPair)

	for start := 0; start < len(cards); start += domain.CardsPerSheetPair {
		end := min(start+domain.CardsPerSheetPair, len(cards))

		var pair domain.FlashcardSheetPair
		for i, card := range cards[start:end] {
			row := i / domain.SheetColumns
			col := i % domain.SheetColumns
			backCol := domain.SheetColumns - 1 - col

			pair.Front.Cells = append(pair.Front.Cells, cellAt(row, col, "Q: "+card.Question, ""))

			footer := ""
			if c, ok := card.FirstCitation(); ok {
				footer = c.String()
			}
			pair.Back.Cells = append(pair.Back.Cells, cellAt(row, backCol, "A: "+card.Answer, footer))
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

func cellAt(row, col int, text, footer string) domain.SheetCell {
	return domain.SheetCell{
		Row:    row,
		Column: col,
		X:      sheetMarginX + float64(col)*(domain.CardSizeMM+sheetMarginX),
		Y:      sheetMarginY + float64(row)*(domain.CardSizeMM+sheetMarginY),
		Text:   text,
		Footer: footer,
	}
}
