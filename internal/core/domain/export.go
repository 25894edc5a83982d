package domain

// Flashcard sheet geometry, in millimetres on an A4 portrait sheet.
const (
	SheetWidthMM      = 210.0
	SheetHeightMM     = 297.0
	CardSizeMM        = 85.0
	SheetColumns      = 2
	SheetRows         = 3
	CardsPerSheetPair = SheetColumns * SheetRows
)

// SheetCell is one card position on a printed sheet.
type SheetCell struct {
	Row    int
	Column int

	// X and Y are the top-left corner of the card in millimetres.
	X float64
	Y float64

	// Text is the card body, prefixed with "Q: " or "A: ".
	Text string

	// Footer holds the first citation on back cells, empty otherwise.
	Footer string
}

// Sheet is one side of a printed sheet pair.
type Sheet struct {
	Cells []SheetCell
}

// FlashcardSheetPair is a front sheet of questions and a back sheet of answers
// whose columns are mirrored for long-edge duplex printing.
type FlashcardSheetPair struct {
	Front Sheet
	Back  Sheet
}
