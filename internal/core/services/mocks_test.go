package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu       sync.Mutex
	respond  func(req driven.StructuredRequest) (string, error)
	requests []driven.StructuredRequest
}

func (m *mockLLM) GenerateJSON(_ context.Context, req driven.StructuredRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.respond == nil {
		return "", errors.New("no response configured")
	}
	return m.respond(req)
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() []driven.StructuredRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.StructuredRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// staticLLM answers every request with the same text.
func staticLLM(raw string) *mockLLM {
	return &mockLLM{respond: func(driven.StructuredRequest) (string, error) { return raw, nil }}
}

// mockPDFEngine implements driven.PDFEngine for testing.
type mockPDFEngine struct {
	pages    [][]string
	parseErr error
	pageErr  error

	mu     sync.Mutex
	parsed [][]byte
}

func (m *mockPDFEngine) Parse(_ context.Context, data []byte) (driven.PDFHandle, error) {
	m.mu.Lock()
	m.parsed = append(m.parsed, data)
	m.mu.Unlock()
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return &mockPDFHandle{pages: m.pages, pageErr: m.pageErr}, nil
}

// mockPDFHandle implements driven.PDFHandle for testing.
type mockPDFHandle struct {
	pages   [][]string
	pageErr error
	closed  bool
}

func (h *mockPDFHandle) PageCount() int { return len(h.pages) }

func (h *mockPDFHandle) PageText(_ context.Context, page int) ([]string, error) {
	if h.pageErr != nil {
		return nil, h.pageErr
	}
	if page < 1 || page > len(h.pages) {
		return nil, domain.ErrPageOutOfRange
	}
	return h.pages[page-1], nil
}

func (h *mockPDFHandle) RenderPage(_ context.Context, page int, scale float64) (image.Image, error) {
	if page < 1 || page > len(h.pages) {
		return nil, domain.ErrPageOutOfRange
	}
	size := int(100 * scale)
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

func (h *mockPDFHandle) Close() error {
	h.closed = true
	return nil
}

// mockSheetWriter implements driven.FlashcardSheetWriter for testing.
type mockSheetWriter struct {
	pairs []domain.FlashcardSheetPair
	err   error
}

func (m *mockSheetWriter) WriteSheets(w io.Writer, pairs []domain.FlashcardSheetPair) error {
	if m.err != nil {
		return m.err
	}
	m.pairs = pairs
	_, err := fmt.Fprintf(w, "%d sheet pairs", len(pairs))
	return err
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// --- Fixtures ---

func testDocument(id, filename, text string) *domain.Document {
	return &domain.Document{
		ID:               id,
		DisplayName:      DisplayName(filename),
		OriginalFilename: filename,
		RawBytes:         []byte("%PDF-" + id),
		PageTaggedText:   text,
		PageCount:        1,
	}
}

// flashcardJSON returns a batch of n cards citing standard.
func flashcardJSON(standard string, n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"id":"%s-%d","question":"Q%d of %s","answer":"A%d","citations":[{"standard":%q,"clause":"1.%d","page":%d}]}`,
			standard, i, i, standard, i, standard, i, i+1))
	}
	return "[" + strings.Join(items, ",") + "]"
}

// quizJSON returns a batch of n questions citing standard.
func quizJSON(standard string, n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"id":"%s-%d","question":"Q%d","correctAnswer":"right","distractors":["w1","w2","w3"],"citations":[{"standard":%q,"clause":"2","page":1}]}`,
			standard, i, i, standard))
	}
	return "[" + strings.Join(items, ",") + "]"
}

// noShuffle keeps batch order stable in tests.
func noShuffle(int, func(i, j int)) {}
