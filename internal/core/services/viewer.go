package services

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// Ensure ViewerService implements the interface.
var _ driving.ViewerService = (*ViewerService)(nil)

// ViewerService turns citations into page views. Every open parses a fresh
// copy of the document bytes.
type ViewerService struct {
	resolver     driving.CitationResolver
	docStore     driven.DocumentStore
	engine       driven.PDFEngine
	defaultScale float64
}

// NewViewerService creates a viewer service.
func NewViewerService(
	resolver driving.CitationResolver,
	docStore driven.DocumentStore,
	engine driven.PDFEngine,
	defaultScale float64,
) *ViewerService {
	if defaultScale <= 0 {
		defaultScale = domain.DefaultScale
	}
	return &ViewerService{
		resolver:     resolver,
		docStore:     docStore,
		engine:       engine,
		defaultScale: domain.ClampScale(defaultScale),
	}
}

// Open resolves a citation into a viewer request. A miss was already logged by
// the resolver and leads to no navigation.
func (s *ViewerService) Open(ctx context.Context, citation domain.Citation) (domain.ViewerRequest, bool) {
	if s.resolver == nil {
		return domain.ViewerRequest{}, false
	}
	res, err := s.resolver.Resolve(ctx, citation.Standard, citation.Page, citation.Clause)
	if err != nil {
		return domain.ViewerRequest{}, false
	}
	return domain.ViewerRequest{
		DocumentID: res.Document.ID,
		Page:       res.Page,
		Clause:     res.Clause,
		Scale:      s.defaultScale,
	}, true
}

// Page returns the text of the requested page. The page is clamped to the
// document's page count.
func (s *ViewerService) Page(ctx context.Context, req domain.ViewerRequest) (*domain.PageView, error) {
	doc, handle, page, err := s.open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = handle.Close() }()

	fragments, err := handle.PageText(ctx, page)
	if err != nil {
		return nil, err
	}

	return &domain.PageView{
		Document:  doc.Summary(),
		Page:      page,
		PageCount: handle.PageCount(),
		Clause:    req.Clause,
		Scale:     s.scale(req.Scale),
		Text:      strings.Join(fragments, " "),
	}, nil
}

// Render rasterises the requested page and encodes it as PNG.
func (s *ViewerService) Render(ctx context.Context, req domain.ViewerRequest) ([]byte, error) {
	_, handle, page, err := s.open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = handle.Close() }()

	img, err := handle.RenderPage(ctx, page, s.scale(req.Scale))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}

func (s *ViewerService) open(
	ctx context.Context,
	req domain.ViewerRequest,
) (*domain.Document, driven.PDFHandle, int, error) {
	if s.docStore == nil || s.engine == nil {
		return nil, nil, 0, domain.ErrNotImplemented
	}
	doc, err := s.docStore.Get(ctx, req.DocumentID)
	if err != nil {
		return nil, nil, 0, err
	}
	handle, err := s.engine.Parse(ctx, doc.Bytes())
	if err != nil {
		return nil, nil, 0, err
	}
	return doc, handle, domain.ClampPage(req.Page, handle.PageCount()), nil
}

func (s *ViewerService) scale(requested float64) float64 {
	if requested <= 0 {
		return s.defaultScale
	}
	return domain.ClampScale(requested)
}
