package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clauselab/internal/connectors/filesystem"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// CitationOutput is a citation as returned by tools.
type CitationOutput struct {
	Standard string `json:"standard"`
	Clause   string `json:"clause"`
	Page     int    `json:"page"`
	Label    string `json:"label"`
}

// DocumentOutput describes a loaded document.
type DocumentOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
	Error    string `json:"error,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"a PDF file or a folder of PDFs on the local machine"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Loaded    int              `json:"loaded"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string   `json:"question" jsonschema:"the question to answer from the loaded standards"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict the context to these documents (default all)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
}

// FlashcardsInput is the input schema for the flashcards tool.
type FlashcardsInput struct {
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"documents to generate from (default all)"`
	ExportPath  string   `json:"export_path,omitempty" jsonschema:"write printable duplex sheets to this PDF path"`
}

// FlashcardOutput is one generated flashcard.
type FlashcardOutput struct {
	ID        string           `json:"id"`
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
}

// FlashcardsOutput is the output schema for the flashcards tool.
type FlashcardsOutput struct {
	Flashcards []FlashcardOutput `json:"flashcards"`
	Count      int               `json:"count"`
	ExportedTo string            `json:"exported_to,omitempty"`
}

// QuizInput is the input schema for the quiz tool.
type QuizInput struct {
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"documents to generate from (default all)"`
}

// QuizQuestionOutput is one generated multiple-choice question.
type QuizQuestionOutput struct {
	ID            string           `json:"id"`
	Question      string           `json:"question"`
	Options       []string         `json:"options"`
	CorrectAnswer string           `json:"correct_answer"`
	Citations     []CitationOutput `json:"citations"`
}

// QuizOutput is the output schema for the quiz tool.
type QuizOutput struct {
	Questions []QuizQuestionOutput `json:"questions"`
	Count     int                  `json:"count"`
}

// ResolveInput is the input schema for the resolve_citation tool.
type ResolveInput struct {
	Standard string `json:"standard" jsonschema:"the cited standard, usually a PDF filename"`
	Page     int    `json:"page,omitempty" jsonschema:"the cited page (default 1)"`
	Clause   string `json:"clause,omitempty" jsonschema:"the cited clause"`
}

// ResolveOutput is the output schema for the resolve_citation tool.
type ResolveOutput struct {
	Found      bool   `json:"found"`
	DocumentID string `json:"document_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageCount  int    `json:"page_count,omitempty"`
	Clause     string `json:"clause,omitempty"`
	Text       string `json:"text,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Load a PDF standard, or every PDF in a folder, into the session",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the standards loaded in this session",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the loaded standards, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "flashcards",
		Description: "Generate cited flashcards from loaded standards, optionally exporting printable sheets",
	}, s.handleFlashcards)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quiz",
		Description: "Generate cited multiple-choice questions from loaded standards",
	}, s.handleQuiz)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_citation",
		Description: "Find the loaded document and page text a citation points to",
	}, s.handleResolve)
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	path := filesystem.ResolvePath(input.Path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	output := IngestOutput{Documents: []DocumentOutput{}}
	var uploads []driving.Upload
	if info.IsDir() {
		found, errs := filesystem.New(path).Scan(ctx)
		for _, e := range errs {
			output.Documents = append(output.Documents, DocumentOutput{Error: e.Error()})
		}
		uploads = found
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, IngestOutput{}, fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = []driving.Upload{{Filename: filepath.Base(path), Data: data}}
	}

	for _, res := range s.ports.Document.Upload(ctx, uploads) {
		if res.Err != nil {
			output.Documents = append(output.Documents, DocumentOutput{Filename: res.Filename, Error: res.Err.Error()})
			continue
		}
		output.Documents = append(output.Documents, documentOutput(res.Document))
		output.Loaded++
	}
	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{Documents: make([]DocumentOutput, len(docs)), Count: len(docs)}
	for i, d := range docs {
		output.Documents[i] = documentOutput(d)
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if !s.ports.generationReady() {
		return nil, AskOutput{}, ErrGenerationUnavailable
	}
	if input.Question == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	docs, err := s.documents(ctx, input.DocumentIDs)
	if err != nil {
		return nil, AskOutput{}, err
	}

	answer := s.ports.Generation.Ask(ctx, input.Question, docs)
	return nil, AskOutput{Answer: answer.Text, Citations: citationOutputs(answer.Citations)}, nil
}

// handleFlashcards handles the flashcards tool invocation.
func (s *Server) handleFlashcards(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FlashcardsInput,
) (*mcp.CallToolResult, FlashcardsOutput, error) {
	if !s.ports.generationReady() {
		return nil, FlashcardsOutput{}, ErrGenerationUnavailable
	}

	docs, err := s.documents(ctx, input.DocumentIDs)
	if err != nil {
		return nil, FlashcardsOutput{}, err
	}
	if len(docs) == 0 {
		return nil, FlashcardsOutput{}, domain.ErrNoDocumentsSelected
	}

	cards := s.ports.Generation.FlashcardBatch(ctx, docs, nil)
	output := FlashcardsOutput{Flashcards: make([]FlashcardOutput, len(cards)), Count: len(cards)}
	for i, c := range cards {
		output.Flashcards[i] = FlashcardOutput{
			ID:        c.ID,
			Question:  c.Question,
			Answer:    c.Answer,
			Citations: citationOutputs(c.Citations),
		}
	}

	if input.ExportPath != "" && len(cards) > 0 {
		if s.ports.Export == nil {
			return nil, output, fmt.Errorf("%w: export", domain.ErrNotImplemented)
		}
		if err := s.ports.Export.Export(cards, input.ExportPath); err != nil {
			return nil, output, fmt.Errorf("exporting flashcards: %w", err)
		}
		output.ExportedTo = input.ExportPath
	}
	return nil, output, nil
}

// handleQuiz handles the quiz tool invocation.
func (s *Server) handleQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, QuizOutput, error) {
	if !s.ports.generationReady() {
		return nil, QuizOutput{}, ErrGenerationUnavailable
	}

	docs, err := s.documents(ctx, input.DocumentIDs)
	if err != nil {
		return nil, QuizOutput{}, err
	}
	if len(docs) == 0 {
		return nil, QuizOutput{}, domain.ErrNoDocumentsSelected
	}

	questions := s.ports.Generation.QuizBatch(ctx, docs, nil)
	output := QuizOutput{Questions: make([]QuizQuestionOutput, len(questions)), Count: len(questions)}
	for i, q := range questions {
		output.Questions[i] = QuizQuestionOutput{
			ID:            q.ID,
			Question:      q.Question,
			Options:       q.Options(),
			CorrectAnswer: q.CorrectAnswer,
			Citations:     citationOutputs(q.Citations),
		}
	}
	return nil, output, nil
}

// handleResolve handles the resolve_citation tool invocation.
func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	if s.ports.Viewer == nil {
		return nil, ResolveOutput{}, ErrViewerUnavailable
	}

	citation := domain.Citation{Standard: input.Standard, Clause: input.Clause, Page: domain.CoercePage(input.Page)}
	req, ok := s.ports.Viewer.Open(ctx, citation)
	if !ok {
		return nil, ResolveOutput{Found: false}, nil
	}

	view, err := s.ports.Viewer.Page(ctx, req)
	if err != nil {
		return nil, ResolveOutput{}, fmt.Errorf("opening page: %w", err)
	}
	return nil, ResolveOutput{
		Found:      true,
		DocumentID: view.Document.ID,
		Filename:   view.Document.OriginalFilename,
		Page:       view.Page,
		PageCount:  view.PageCount,
		Clause:     view.Clause,
		Text:       view.Text,
	}, nil
}

// documents returns the requested documents, or all of them when ids is empty.
func (s *Server) documents(ctx context.Context, ids []string) ([]*domain.Document, error) {
	if len(ids) == 0 {
		return s.ports.Document.List(ctx)
	}
	docs := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.ports.Document.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func documentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{ID: d.ID, Name: d.DisplayName, Filename: d.OriginalFilename, Pages: d.PageCount}
}

func citationOutputs(citations []domain.Citation) []CitationOutput {
	out := make([]CitationOutput, len(citations))
	for i, c := range citations {
		out[i] = CitationOutput{Standard: c.Standard, Clause: c.Clause, Page: c.Page, Label: c.String()}
	}
	return out
}
