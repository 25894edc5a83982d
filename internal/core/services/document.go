package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the session's document set.
type DocumentService struct {
	ingestion driving.IngestionService
	docStore  driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(ingestion driving.IngestionService, docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{
		ingestion: ingestion,
		docStore:  docStore,
	}
}

// Upload ingests each file on its own. Failures are reported per file and
// never stop the remaining files.
func (s *DocumentService) Upload(ctx context.Context, uploads []driving.Upload) []driving.UploadResult {
	results := make([]driving.UploadResult, 0, len(uploads))
	for _, up := range uploads {
		res := driving.UploadResult{Filename: up.Filename}
		doc, err := s.add(ctx, up)
		if err != nil {
			logger.Warn("upload %s failed: %v", up.Filename, err)
			res.Err = err
		} else {
			res.Document = doc
		}
		results = append(results, res)
	}
	return results
}

func (s *DocumentService) add(ctx context.Context, up driving.Upload) (*domain.Document, error) {
	if s.ingestion == nil || s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if !IsPDFFilename(up.Filename) {
		return nil, fmt.Errorf("%w: %s is not a PDF", domain.ErrUnsupportedType, up.Filename)
	}
	doc, err := s.ingestion.Ingest(ctx, up.Data, up.Filename)
	if err != nil {
		return nil, err
	}
	if err := s.docStore.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns all documents in upload order.
func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.List(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.Get(ctx, id)
}

// Remove deletes a document from the set.
func (s *DocumentService) Remove(ctx context.Context, id string) error {
	if s.docStore == nil {
		return domain.ErrNotImplemented
	}
	return s.docStore.Delete(ctx, id)
}

// Lookup returns the documents for the given IDs, in the given order.
// Unknown IDs are skipped.
func Lookup(ctx context.Context, docs driving.DocumentService, ids []string) []*domain.Document {
	out := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := docs.Get(ctx, id)
		if err != nil {
			logger.Debug("document %s not available: %v", id, err)
			continue
		}
		out = append(out, doc)
	}
	return out
}
