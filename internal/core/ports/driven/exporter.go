package driven

import (
	"io"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// FlashcardSheetWriter renders laid-out flashcard sheets to a printable document.
type FlashcardSheetWriter interface {
	// WriteSheets writes each pair as a front page followed by a back page.
	WriteSheets(w io.Writer, pairs []domain.FlashcardSheetPair) error
}
