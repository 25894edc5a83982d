package driving

import (
	"context"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// Resolution is a citation matched to a loaded document.
type Resolution struct {
	Document *domain.Document
	Page     int
	Clause   string
}

// CitationResolver maps model-supplied citations back to loaded documents.
type CitationResolver interface {
	// Resolve finds the first document whose normalised original filename or
	// display name equals the normalised standardRef.
	// Returns domain.ErrResolutionMiss when nothing matches.
	Resolve(ctx context.Context, standardRef string, page int, clause string) (*Resolution, error)
}

// ViewerService opens document pages for display.
type ViewerService interface {
	// Open resolves a citation and returns a viewer request for it.
	// A miss is logged and reported as ok=false, never as an error.
	Open(ctx context.Context, citation domain.Citation) (req domain.ViewerRequest, ok bool)

	// Page returns the text of the requested page, clamped to the document.
	Page(ctx context.Context, req domain.ViewerRequest) (*domain.PageView, error)

	// Render rasterises the requested page as PNG.
	Render(ctx context.Context, req domain.ViewerRequest) ([]byte, error)
}
