package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

var (
	duplicateCounter = regexp.MustCompile(`(?i)\s*\(\d+\)\s*(\.pdf)$`)
	pdfExtension     = regexp.MustCompile(`(?i)\.pdf$`)
)

// DisplayName derives a document's display name from its filename by
// removing a duplicate counter such as " (1)" before the extension and then
// the extension itself.
func DisplayName(filename string) string {
	name := duplicateCounter.ReplaceAllString(filename, "$1")
	return pdfExtension.ReplaceAllString(name, "")
}

// IsPDFFilename reports whether a filename carries a .pdf extension.
func IsPDFFilename(filename string) bool {
	return pdfExtension.MatchString(strings.TrimSpace(filename))
}

// IngestionService extracts page-tagged text from PDF bytes.
type IngestionService struct {
	engine driven.PDFEngine
	now    func() time.Time
	newID  func() string
}

// NewIngestionService creates an ingestion service backed by a PDF engine.
func NewIngestionService(engine driven.PDFEngine) *IngestionService {
	return &IngestionService{
		engine: engine,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Ingest parses a PDF and returns a Document whose text carries a page marker
// before each page. The engine works on its own copy of data, and the
// Document keeps another, so the caller's buffer is never shared.
func (s *IngestionService) Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	if s.engine == nil {
		return nil, domain.ErrNotImplemented
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", domain.ErrIngestion, filename)
	}

	logger.Debug("ingesting %s (%d bytes)", filename, len(data))

	handle, err := s.engine.Parse(ctx, clone(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, filename, err)
	}
	defer func() { _ = handle.Close() }()

	text, pages, err := PageTaggedText(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, filename, err)
	}

	doc := &domain.Document{
		ID:               s.newID(),
		DisplayName:      DisplayName(filename),
		OriginalFilename: filename,
		RawBytes:         clone(data),
		PageTaggedText:   text,
		PageCount:        pages,
		CreatedAt:        s.now(),
	}

	logger.Debug("ingested %s as %q: %d pages, %d chars", filename, doc.DisplayName, pages, len(text))
	return doc, nil
}

// PageTaggedText walks pages 1..N in order, joins each page's fragments with
// single spaces and prefixes the page with its marker on its own line.
func PageTaggedText(ctx context.Context, handle driven.PDFHandle) (string, int, error) {
	pages := handle.PageCount()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		fragments, err := handle.PageText(ctx, i)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString("\n")
		b.WriteString(domain.PageMarker(i))
		b.WriteString("\n")
		b.WriteString(strings.Join(fragments, " "))
	}
	return b.String(), pages, nil
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
