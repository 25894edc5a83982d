package driving

import (
	"context"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// Upload is a file handed to ingestion.
type Upload struct {
	Filename string
	Data     []byte
}

// UploadResult reports the outcome of one file in a batch upload.
type UploadResult struct {
	Filename string
	Document *domain.Document
	Err      error
}

// IngestionService turns PDF bytes into Documents.
type IngestionService interface {
	// Ingest parses a PDF and returns a page-tagged Document.
	// Returns domain.ErrIngestion if the bytes cannot be parsed.
	// The caller's buffer is never retained or modified.
	Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error)
}

// DocumentService manages the session's document set.
type DocumentService interface {
	// Upload ingests each file independently and adds successes to the set.
	// A failure for one file does not block the others.
	Upload(ctx context.Context, uploads []Upload) []UploadResult

	// List returns all documents in upload order.
	List(ctx context.Context) ([]*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Remove deletes a document from the set.
	Remove(ctx context.Context, id string) error
}
