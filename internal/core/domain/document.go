package domain

import (
	"fmt"
	"time"
)

// PageMarkerFormat is the inline tag that precedes each page's text in
// Document.PageTaggedText. The model reads page numbers back from it.
const PageMarkerFormat = "[Page %d]"

// PageMarker returns the marker for the given 1-based page number.
func PageMarker(page int) string {
	return fmt.Sprintf(PageMarkerFormat, page)
}

// Document is an uploaded PDF standard held in the session's document set.
// It is immutable once ingested.
type Document struct {
	// ID is assigned at ingestion and unique for the session.
	ID string

	// DisplayName is OriginalFilename without duplicate counters or extension.
	DisplayName string

	// OriginalFilename is preserved verbatim for citation resolution.
	OriginalFilename string

	// RawBytes backs on-demand page rendering. Never hand this slice to
	// a consumer directly, use Bytes instead.
	RawBytes []byte

	// PageTaggedText is the extracted text with a page marker before each page.
	PageTaggedText string

	// PageCount is the number of pages found at ingestion.
	PageCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Bytes returns an independent copy of the raw PDF bytes.
func (d *Document) Bytes() []byte {
	if d == nil || d.RawBytes == nil {
		return nil
	}
	out := make([]byte, len(d.RawBytes))
	copy(out, d.RawBytes)
	return out
}

// ContextBlock returns the document's text headed by its filename, the form
// in which documents are handed to the model.
func (d *Document) ContextBlock() string {
	return "FILENAME: " + d.OriginalFilename + "\n" + d.PageTaggedText
}

// DocumentSummary is a lightweight view of a Document for listings.
type DocumentSummary struct {
	ID               string
	DisplayName      string
	OriginalFilename string
	PageCount        int
	TextLength       int
}

// Summary returns the listing view of the document.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:               d.ID,
		DisplayName:      d.DisplayName,
		OriginalFilename: d.OriginalFilename,
		PageCount:        d.PageCount,
		TextLength:       len(d.PageTaggedText),
	}
}
