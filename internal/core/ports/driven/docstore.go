package driven

import (
	"context"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// DocumentStore holds the session's document set.
// List order is upload order, which citation resolution relies on.
type DocumentStore interface {
	// Save adds a document, or replaces one with the same ID in place.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if no such document exists.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents in upload order.
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete removes a document.
	// Returns domain.ErrNotFound if no such document exists.
	Delete(ctx context.Context, id string) error
}
