package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// Ensure GenerationService implements the interfaces.
var (
	_ driving.GenerationService = (*GenerationService)(nil)
	_ driven.PromptStoreAware   = (*GenerationService)(nil)
)

// AnswerModelUnavailable is returned as the answer text when no model is configured.
const AnswerModelUnavailable = "No language model is configured. Run 'clauselab settings llm' to choose a provider."

const defaultBatchSize = 10

// Response schemas declared to the model.
var (
	citationSchema = &driven.Schema{
		Type: driven.SchemaObject,
		Properties: map[string]*driven.Schema{
			"standard": {Type: driven.SchemaString},
			"clause":   {Type: driven.SchemaString},
			"page":     {Type: driven.SchemaNumber},
		},
		Required: []string{"standard", "clause", "page"},
	}

	citationsSchema = &driven.Schema{Type: driven.SchemaArray, Items: citationSchema}

	answerSchema = &driven.Schema{
		Type: driven.SchemaObject,
		Properties: map[string]*driven.Schema{
			"answer":    {Type: driven.SchemaString},
			"citations": citationsSchema,
		},
		Required: []string{"answer", "citations"},
	}

	flashcardBatchSchema = &driven.Schema{
		Type: driven.SchemaArray,
		Items: &driven.Schema{
			Type: driven.SchemaObject,
			Properties: map[string]*driven.Schema{
				"id":        {Type: driven.SchemaString},
				"question":  {Type: driven.SchemaString},
				"answer":    {Type: driven.SchemaString},
				"citations": citationsSchema,
			},
			Required: []string{"id", "question", "answer", "citations"},
		},
	}

	quizBatchSchema = &driven.Schema{
		Type: driven.SchemaArray,
		Items: &driven.Schema{
			Type: driven.SchemaObject,
			Properties: map[string]*driven.Schema{
				"id":            {Type: driven.SchemaString},
				"question":      {Type: driven.SchemaString},
				"correctAnswer": {Type: driven.SchemaString},
				"distractors":   {Type: driven.SchemaArray, Items: &driven.Schema{Type: driven.SchemaString}},
				"citations":     citationsSchema,
			},
			Required: []string{"id", "question", "correctAnswer", "distractors", "citations"},
		},
	}
)

// GenerationService is the grounded generation engine. Every call binds the
// model to supplied document text through the system prompt and a declared
// response schema, and every failure degrades to a fallback artifact.
type GenerationService struct {
	llm      driven.LLMService
	prompts  promptLoader
	settings domain.GenerationSettings
	limiter  *rate.Limiter
	shuffle  func(n int, swap func(i, j int))
	log      *zap.SugaredLogger
}

// NewGenerationService creates a generation engine. llm may be nil, in which
// case every operation returns its fallback.
func NewGenerationService(llm driven.LLMService, settings domain.GenerationSettings) *GenerationService {
	if settings.FlashcardsPerDocument <= 0 {
		settings.FlashcardsPerDocument = defaultBatchSize
	}
	if settings.QuestionsPerDocument <= 0 {
		settings.QuestionsPerDocument = defaultBatchSize
	}

	s := &GenerationService{
		llm:      llm,
		settings: settings,
		shuffle:  rand.Shuffle,
		log:      logger.Named("generation"),
	}
	if settings.RequestsPerSecond > 0 {
		burst := settings.Concurrency
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}
	return s
}

// SetPromptStore sets the store for customisable prompts.
func (s *GenerationService) SetPromptStore(store driven.PromptStore) {
	s.prompts.store = store
}

// Available reports whether a model is configured.
func (s *GenerationService) Available() bool {
	return s.llm != nil
}

// CombineContext joins documents into the context block handed to the model,
// each headed by its exact original filename.
func CombineContext(docs []*domain.Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, doc.ContextBlock())
	}
	return strings.Join(blocks, "\n\n")
}

// Ask answers a question against the given documents.
func (s *GenerationService) Ask(ctx context.Context, query string, docs []*domain.Document) domain.Answer {
	if len(docs) == 0 {
		return domain.Answer{Text: domain.AnswerNoDocuments, Citations: []domain.Citation{}}
	}
	return s.AnswerQuery(ctx, query, CombineContext(docs))
}

// AnswerQuery answers a question against a combined context.
func (s *GenerationService) AnswerQuery(ctx context.Context, query, combinedContext string) domain.Answer {
	if s.llm == nil {
		return domain.Answer{Text: AnswerModelUnavailable, Citations: []domain.Citation{}}
	}

	logger.Section("Answer")
	raw, err := s.generate(ctx, driven.StructuredRequest{
		System:     s.prompts.load(driven.PromptSystem),
		User:       fmt.Sprintf(s.prompts.load(driven.PromptAnswer), combinedContext, query),
		SchemaName: "answer",
		Schema:     answerSchema,
	})
	if err != nil {
		s.log.Warnw("answer generation failed", "error", err)
		return domain.Answer{Text: domain.AnswerProcessingError, Citations: []domain.Citation{}}
	}

	answer, err := ParseAnswer(raw)
	if err != nil {
		s.log.Warnw("answer response unusable", "error", err)
	}
	return answer
}

// BuildFlashcards generates flashcards for one document. Failures yield an
// empty batch.
func (s *GenerationService) BuildFlashcards(ctx context.Context, doc *domain.Document) []domain.Flashcard {
	if s.llm == nil || doc == nil {
		return []domain.Flashcard{}
	}

	count := s.settings.FlashcardsPerDocument
	raw, err := s.generate(ctx, driven.StructuredRequest{
		System:     s.prompts.load(driven.PromptSystem) + "\n" + fmt.Sprintf(s.prompts.load(driven.PromptFlashcardsSystem), count),
		User:       fmt.Sprintf(s.prompts.load(driven.PromptFlashcards), doc.OriginalFilename, count, doc.PageTaggedText),
		SchemaName: "flashcards",
		Schema:     flashcardBatchSchema,
	})
	if err != nil {
		s.log.Warnw("flashcard generation failed", "document", doc.OriginalFilename, "error", err)
		return []domain.Flashcard{}
	}

	cards, err := ParseFlashcards(raw)
	if err != nil {
		s.log.Warnw("flashcard response unusable", "document", doc.OriginalFilename, "error", err)
	}
	s.log.Debugw("flashcards generated", "document", doc.OriginalFilename, "count", len(cards))
	return cards
}

// BuildQuiz generates quiz questions for one document. Failures yield an
// empty batch.
func (s *GenerationService) BuildQuiz(ctx context.Context, doc *domain.Document) []domain.QuizQuestion {
	if s.llm == nil || doc == nil {
		return []domain.QuizQuestion{}
	}

	count := s.settings.QuestionsPerDocument
	raw, err := s.generate(ctx, driven.StructuredRequest{
		System:     s.prompts.load(driven.PromptSystem) + "\n" + s.prompts.load(driven.PromptQuizSystem),
		User:       fmt.Sprintf(s.prompts.load(driven.PromptQuiz), doc.OriginalFilename, count, doc.PageTaggedText),
		SchemaName: "quiz",
		Schema:     quizBatchSchema,
	})
	if err != nil {
		s.log.Warnw("quiz generation failed", "document", doc.OriginalFilename, "error", err)
		return []domain.QuizQuestion{}
	}

	questions, err := ParseQuiz(raw)
	if err != nil {
		s.log.Warnw("quiz response unusable", "document", doc.OriginalFilename, "error", err)
	}
	s.log.Debugw("quiz generated", "document", doc.OriginalFilename, "count", len(questions))
	return questions
}

// FlashcardBatch generates flashcards for every document concurrently and
// returns the combined, shuffled cards once all calls have settled.
func (s *GenerationService) FlashcardBatch(
	ctx context.Context,
	docs []*domain.Document,
	progress driving.ProgressFunc,
) []domain.Flashcard {
	logger.Section("Flashcards")
	return fanOut(ctx, docs, s.settings.Concurrency, progress, s.shuffle, s.BuildFlashcards)
}

// QuizBatch generates questions for every document concurrently and returns
// the combined, shuffled questions once all calls have settled.
func (s *GenerationService) QuizBatch(
	ctx context.Context,
	docs []*domain.Document,
	progress driving.ProgressFunc,
) []domain.QuizQuestion {
	logger.Section("Quiz")
	return fanOut(ctx, docs, s.settings.Concurrency, progress, s.shuffle, s.BuildQuiz)
}

// fanOut runs build once per document and joins on all of them. Each call
// degrades on its own, so one failure never drops its siblings. Progress is
// reported after each call settles, in completion order.
func fanOut[T any](
	ctx context.Context,
	docs []*domain.Document,
	limit int,
	progress driving.ProgressFunc,
	shuffle func(n int, swap func(i, j int)),
	build func(context.Context, *domain.Document) []T,
) []T {
	total := len(docs)
	report := func(completed int) {
		if progress != nil {
			progress(domain.Progress{Completed: completed, Total: total})
		}
	}
	report(0)

	results := make([][]T, total)
	var completed atomic.Int64

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = build(ctx, doc)
			report(int(completed.Add(1)))
			return nil
		})
	}
	_ = g.Wait()

	combined := make([]T, 0, total*defaultBatchSize)
	for _, r := range results {
		combined = append(combined, r...)
	}
	shuffle(len(combined), func(i, j int) {
		combined[i], combined[j] = combined[j], combined[i]
	})
	return combined
}

func (s *GenerationService) generate(ctx context.Context, req driven.StructuredRequest) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrModel, err)
		}
	}
	logger.Debug("model %s: %s request, %d chars of user content", s.llm.ModelName(), req.SchemaName, len(req.User))
	raw, err := s.llm.GenerateJSON(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrModel, err)
	}
	return raw, nil
}
