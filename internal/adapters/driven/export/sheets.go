// Package export writes flashcard sheets as printable A4 PDFs using
// github.com/go-pdf/fpdf.
package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
)

const (
	fontFamily     = "Helvetica"
	bodyFontSize   = 12.0
	footerFontSize = 8.0
	cellPadding    = 4.0
	lineHeight     = 5.5
	footerHeight   = 8.0
)

// Ensure SheetWriter implements the interface.
var _ driven.FlashcardSheetWriter = (*SheetWriter)(nil)

// SheetWriter renders sheet pairs to PDF.
type SheetWriter struct {
	title string
}

// NewSheetWriter creates a sheet writer. The title is stored in the PDF metadata.
func NewSheetWriter(title string) *SheetWriter {
	if title == "" {
		title = "Flashcards"
	}
	return &SheetWriter{title: title}
}

// WriteSheets writes each pair as a front page followed by a back page.
func (s *SheetWriter) WriteSheets(w io.Writer, pairs []domain.FlashcardSheetPair) error {
	if len(pairs) == 0 {
		return fmt.Errorf("%w: no sheets to write", domain.ErrInvalidInput)
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: domain.SheetWidthMM, Ht: domain.SheetHeightMM},
	})
	doc.SetTitle(s.title, true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, pair := range pairs {
		writeSheet(doc, tr, pair.Front)
		writeSheet(doc, tr, pair.Back)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("writing flashcard sheets: %w", err)
	}
	return nil
}

func writeSheet(doc *fpdf.Fpdf, tr func(string) string, sheet domain.Sheet) {
	doc.AddPage()
	doc.SetDrawColor(160, 160, 160)
	doc.SetTextColor(0, 0, 0)

	for _, cell := range sheet.Cells {
		doc.Rect(cell.X, cell.Y, domain.CardSizeMM, domain.CardSizeMM, "D")

		doc.SetFont(fontFamily, "", bodyFontSize)
		doc.SetXY(cell.X+cellPadding, cell.Y+cellPadding)
		doc.MultiCell(domain.CardSizeMM-2*cellPadding, lineHeight, tr(cell.Text), "", "L", false)

		if cell.Footer == "" {
			continue
		}
		doc.SetFont(fontFamily, "I", footerFontSize)
		doc.SetTextColor(90, 90, 90)
		doc.SetXY(cell.X+cellPadding, cell.Y+domain.CardSizeMM-cellPadding-footerHeight)
		doc.MultiCell(domain.CardSizeMM-2*cellPadding, footerFontSize/2, tr(cell.Footer), "", "L", false)
		doc.SetTextColor(0, 0, 0)
	}
}
