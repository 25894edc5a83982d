package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []*domain.Document
	uploads   []driving.Upload
	uploadErr error
	err       error
}

func (m *mockDocumentService) Upload(_ context.Context, uploads []driving.Upload) []driving.UploadResult {
	m.uploads = append(m.uploads, uploads...)
	results := make([]driving.UploadResult, len(uploads))
	for i, u := range uploads {
		results[i] = driving.UploadResult{Filename: u.Filename}
		if m.uploadErr != nil {
			results[i].Err = m.uploadErr
			continue
		}
		results[i].Document = &domain.Document{
			ID:               "id-" + u.Filename,
			DisplayName:      u.Filename,
			OriginalFilename: u.Filename,
			PageCount:        1,
		}
	}
	return results
}

func (m *mockDocumentService) List(_ context.Context) ([]*domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.documents {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) error {
	return m.err
}

// mockGenerationService is a mock implementation of driving.GenerationService.
type mockGenerationService struct {
	available bool
	answer    domain.Answer
	cards     []domain.Flashcard
	questions []domain.QuizQuestion
	askedWith []*domain.Document
}

func (m *mockGenerationService) Available() bool {
	return m.available
}

func (m *mockGenerationService) AnswerQuery(_ context.Context, _, _ string) domain.Answer {
	return m.answer
}

func (m *mockGenerationService) Ask(_ context.Context, _ string, docs []*domain.Document) domain.Answer {
	m.askedWith = docs
	return m.answer
}

func (m *mockGenerationService) BuildFlashcards(_ context.Context, _ *domain.Document) []domain.Flashcard {
	return m.cards
}

func (m *mockGenerationService) BuildQuiz(_ context.Context, _ *domain.Document) []domain.QuizQuestion {
	return m.questions
}

func (m *mockGenerationService) FlashcardBatch(
	_ context.Context, _ []*domain.Document, _ driving.ProgressFunc,
) []domain.Flashcard {
	return m.cards
}

func (m *mockGenerationService) QuizBatch(
	_ context.Context, _ []*domain.Document, _ driving.ProgressFunc,
) []domain.QuizQuestion {
	return m.questions
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	path  string
	cards int
	err   error
}

func (m *mockExportService) Layout(_ []domain.Flashcard) []domain.FlashcardSheetPair {
	return nil
}

func (m *mockExportService) Write(_ io.Writer, _ []domain.Flashcard) error {
	return m.err
}

func (m *mockExportService) Export(cards []domain.Flashcard, path string) error {
	m.path = path
	m.cards = len(cards)
	return m.err
}

// mockViewerService is a mock implementation of driving.ViewerService.
type mockViewerService struct {
	doc     *domain.Document
	opened  []domain.Citation
	pageErr error
}

func (m *mockViewerService) Open(_ context.Context, c domain.Citation) (domain.ViewerRequest, bool) {
	m.opened = append(m.opened, c)
	if m.doc == nil || c.Standard != m.doc.OriginalFilename {
		return domain.ViewerRequest{}, false
	}
	return domain.ViewerRequest{DocumentID: m.doc.ID, Page: c.Page, Clause: c.Clause, Scale: 1}, true
}

func (m *mockViewerService) Page(_ context.Context, req domain.ViewerRequest) (*domain.PageView, error) {
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	if m.doc == nil || req.DocumentID != m.doc.ID {
		return nil, domain.ErrNotFound
	}
	page := domain.ClampPage(req.Page, m.doc.PageCount)
	return &domain.PageView{
		Document:  m.doc.Summary(),
		Page:      page,
		PageCount: m.doc.PageCount,
		Clause:    req.Clause,
		Scale:     1,
		Text:      "text of page " + string(rune('0'+page)),
	}, nil
}

func (m *mockViewerService) Render(_ context.Context, _ domain.ViewerRequest) ([]byte, error) {
	return nil, domain.ErrNotImplemented
}

func trackDoc() *domain.Document {
	return &domain.Document{
		ID:               "doc-1",
		DisplayName:      "Track",
		OriginalFilename: "Track.pdf",
		PageCount:        3,
		PageTaggedText:   "\n[Page 1]\nintro\n[Page 2]\nballast\n[Page 3]\ndrainage",
	}
}
