package driven

import (
	"context"
	"image"
)

// PDFEngine parses PDF bytes into a handle.
// Implementations must not retain or mutate the slice passed to Parse.
type PDFEngine interface {
	// Parse opens a PDF from bytes.
	// Returns domain.ErrDocumentParse if the bytes are not a readable PDF.
	Parse(ctx context.Context, data []byte) (PDFHandle, error)
}

// PDFHandle is a parsed PDF.
type PDFHandle interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageText returns the text fragments of a 1-based page in content order.
	PageText(ctx context.Context, page int) ([]string, error)

	// RenderPage rasterises a 1-based page at the given scale.
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)

	// Close releases resources held by the handle.
	Close() error
}
