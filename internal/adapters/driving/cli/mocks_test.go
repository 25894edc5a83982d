package cli

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/adapters/driven/export"
	"github.com/custodia-labs/clauselab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/core/services"
)

// mockGeneration implements driving.GenerationService for testing.
type mockGeneration struct {
	unavailable bool
	answer      domain.Answer
	cards       []domain.Flashcard
	questions   []domain.QuizQuestion

	askedWith []*domain.Document
}

func (m *mockGeneration) Available() bool { return !m.unavailable }

func (m *mockGeneration) AnswerQuery(context.Context, string, string) domain.Answer {
	return m.answer
}

func (m *mockGeneration) Ask(_ context.Context, _ string, docs []*domain.Document) domain.Answer {
	m.askedWith = docs
	return m.answer
}

func (m *mockGeneration) BuildFlashcards(context.Context, *domain.Document) []domain.Flashcard {
	return m.cards
}

func (m *mockGeneration) BuildQuiz(context.Context, *domain.Document) []domain.QuizQuestion {
	return m.questions
}

func (m *mockGeneration) FlashcardBatch(
	_ context.Context, docs []*domain.Document, progress driving.ProgressFunc,
) []domain.Flashcard {
	for i := range docs {
		progress(domain.Progress{Completed: i + 1, Total: len(docs)})
	}
	return m.cards
}

func (m *mockGeneration) QuizBatch(
	_ context.Context, docs []*domain.Document, progress driving.ProgressFunc,
) []domain.QuizQuestion {
	for i := range docs {
		progress(domain.Progress{Completed: i + 1, Total: len(docs)})
	}
	return m.questions
}

// mockPDFEngine implements driven.PDFEngine with fixed page text.
type mockPDFEngine struct {
	pages [][]string
}

func (m *mockPDFEngine) Parse(context.Context, []byte) (driven.PDFHandle, error) {
	return &mockPDFHandle{pages: m.pages}, nil
}

type mockPDFHandle struct {
	pages [][]string
}

func (h *mockPDFHandle) PageCount() int { return len(h.pages) }

func (h *mockPDFHandle) PageText(_ context.Context, page int) ([]string, error) {
	if page < 1 || page > len(h.pages) {
		return nil, domain.ErrPageOutOfRange
	}
	return h.pages[page-1], nil
}

func (h *mockPDFHandle) RenderPage(_ context.Context, _ int, scale float64) (image.Image, error) {
	size := int(50 * scale)
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

func (h *mockPDFHandle) Close() error { return nil }

func testDocuments() []*domain.Document {
	return []*domain.Document{
		{
			ID:               "doc-1",
			DisplayName:      "ISO 9001",
			OriginalFilename: "ISO 9001.pdf",
			RawBytes:         []byte("%PDF-1.4"),
			PageCount:        3,
			PageTaggedText:   "[Page 1] Scope\n[Page 2] Leadership\n[Page 3] Planning",
		},
		{
			ID:               "doc-2",
			DisplayName:      "ISO 14001",
			OriginalFilename: "ISO 14001.pdf",
			RawBytes:         []byte("%PDF-1.4"),
			PageCount:        3,
			PageTaggedText:   "[Page 1] Environment",
		},
	}
}

// setupServices wires real services over an in-memory store seeded with docs
// and restores the package state when the test ends.
func setupServices(t *testing.T, gen *mockGeneration, docs ...*domain.Document) {
	t.Helper()

	store := memory.NewDocumentStore()
	for _, d := range docs {
		require.NoError(t, store.Save(context.Background(), d))
	}
	engine := &mockPDFEngine{pages: [][]string{
		{"Scope", "of", "the", "standard"},
		{"Top", "management", "shall", "demonstrate", "leadership"},
		{"Planning"},
	}}

	documents := services.NewDocumentService(services.NewIngestionService(engine), store)
	resolver := services.NewCitationResolver(store)
	exporter := services.NewExportService(export.NewSheetWriter("Flashcards"))

	svc := Services{
		Document: documents,
		Export:   exporter,
		Resolver: resolver,
		Viewer:   services.NewViewerService(resolver, store, engine, domain.DefaultScale),
		NewFlashcardSession: func() driving.FlashcardSession {
			return services.NewFlashcardSession(documents, gen, exporter)
		},
		NewQuizSession: func() driving.QuizSession {
			return services.NewQuizSession(documents, gen)
		},
	}
	if gen != nil {
		svc.Generation = gen
	}
	SetServices(svc)

	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags()
	})
}

// resetFlags clears flag values that outlive a single Execute call.
func resetFlags() {
	docPaths = nil
	verbose = false
	askJSON = false
	documentJSON = false
	flashcardSelect = nil
	flashcardExport = ""
	flashcardJSON = false
	quizSelect = nil
	quizKey = false
	resolveClause = ""
	renderScale = 0
	renderOut = "page.png"
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
