package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// Ensure sessions implement the interfaces.
var (
	_ driving.FlashcardSession = (*FlashcardSession)(nil)
	_ driving.QuizSession      = (*QuizSession)(nil)
)

// selection is the ordered set of documents chosen for generation.
type selection struct {
	ids []string
}

func (s *selection) list() []string {
	return slices.Clone(s.ids)
}

func (s *selection) has(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *selection) toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// ticket resolves the selection into documents for a new epoch.
func (s *selection) ticket(ctx context.Context, docs driving.DocumentService, epoch uint64) (driving.GenerationTicket, error) {
	if len(s.ids) == 0 {
		return driving.GenerationTicket{}, domain.ErrNoDocumentsSelected
	}
	resolved := Lookup(ctx, docs, s.ids)
	if len(resolved) == 0 {
		return driving.GenerationTicket{}, domain.ErrNoDocumentsSelected
	}
	return driving.GenerationTicket{Epoch: epoch, Documents: resolved}, nil
}

// progressTracker records progress for the current epoch only. Callbacks may
// arrive out of order, so the highest completed count wins.
type progressTracker struct {
	mu       *sync.Mutex
	epoch    *uint64
	progress *domain.Progress
}

func (t progressTracker) track(epoch uint64) driving.ProgressFunc {
	return func(p domain.Progress) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if epoch != *t.epoch {
			return
		}
		if p.Completed >= t.progress.Completed {
			*t.progress = p
		}
	}
}

func transitionError(action string, phase fmt.Stringer) error {
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidTransition, action, phase)
}

// FlashcardSession is the flashcard study state machine. It is safe for
// concurrent use; generation usually runs on another goroutine.
type FlashcardSession struct {
	docs   driving.DocumentService
	gen    driving.GenerationService
	export driving.ExportService

	mu       sync.Mutex
	phase    domain.FlashcardPhase
	selected selection
	epoch    uint64
	progress domain.Progress
	cards    []domain.Flashcard
	index    int
	faceUp   bool
}

// NewFlashcardSession creates a session in the selecting phase.
func NewFlashcardSession(
	docs driving.DocumentService,
	gen driving.GenerationService,
	export driving.ExportService,
) *FlashcardSession {
	return &FlashcardSession{
		docs:   docs,
		gen:    gen,
		export: export,
		phase:  domain.FlashcardSelecting,
	}
}

// Phase returns the current phase.
func (s *FlashcardSession) Phase() domain.FlashcardPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Selected returns the selected document IDs in selection order.
func (s *FlashcardSession) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.list()
}

// IsSelected reports whether a document is selected.
func (s *FlashcardSession) IsSelected(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.has(documentID)
}

// Toggle selects or deselects a document.
func (s *FlashcardSession) Toggle(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.FlashcardSelecting {
		return transitionError("change selection", s.phase)
	}
	s.selected.toggle(documentID)
	return nil
}

// Begin starts a generation request.
func (s *FlashcardSession) Begin(ctx context.Context) (driving.GenerationTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.FlashcardGenerating {
		return driving.GenerationTicket{}, transitionError("generate", s.phase)
	}

	ticket, err := s.selected.ticket(ctx, s.docs, s.epoch+1)
	if err != nil {
		return driving.GenerationTicket{}, err
	}
	s.epoch = ticket.Epoch
	s.phase = domain.FlashcardGenerating
	s.progress = domain.Progress{Total: len(ticket.Documents)}
	s.cards = nil
	s.index = 0
	s.faceUp = false
	return ticket, nil
}

// Track returns a progress callback bound to epoch.
func (s *FlashcardSession) Track(epoch uint64) driving.ProgressFunc {
	return progressTracker{mu: &s.mu, epoch: &s.epoch, progress: &s.progress}.track(epoch)
}

// Complete applies the cards of a finished request.
func (s *FlashcardSession) Complete(epoch uint64, cards []domain.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.phase != domain.FlashcardGenerating {
		logger.Debug("discarding flashcards from epoch %d (current %d)", epoch, s.epoch)
		return domain.ErrStaleGeneration
	}
	s.progress.Completed = s.progress.Total
	if len(cards) == 0 {
		s.phase = domain.FlashcardSelecting
		return domain.ErrEmptyBatch
	}
	s.cards = slices.Clone(cards)
	s.index = 0
	s.faceUp = false
	s.phase = domain.FlashcardReviewing
	return nil
}

// Generate runs a full generation synchronously.
func (s *FlashcardSession) Generate(ctx context.Context) error {
	ticket, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	cards := s.gen.FlashcardBatch(ctx, ticket.Documents, s.Track(ticket.Epoch))
	return s.Complete(ticket.Epoch, cards)
}

// Progress returns the progress of the current request.
func (s *FlashcardSession) Progress() domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Cards returns a copy of the generated cards.
func (s *FlashcardSession) Cards() []domain.Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cards)
}

// Current returns the card under review.
func (s *FlashcardSession) Current() (domain.Flashcard, int, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.FlashcardReviewing || len(s.cards) == 0 {
		return domain.Flashcard{}, 0, false, false
	}
	return s.cards[s.index], s.index, s.faceUp, true
}

// Flip turns the current card over.
func (s *FlashcardSession) Flip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.FlashcardReviewing {
		return transitionError("flip", s.phase)
	}
	s.faceUp = !s.faceUp
	return nil
}

// Next moves to the next card. At the last card it does nothing.
func (s *FlashcardSession) Next() error {
	return s.move(1)
}

// Prev moves to the previous card. At the first card it does nothing.
func (s *FlashcardSession) Prev() error {
	return s.move(-1)
}

func (s *FlashcardSession) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.FlashcardReviewing {
		return transitionError("navigate", s.phase)
	}
	next := max(0, min(s.index+delta, len(s.cards)-1))
	if next != s.index {
		s.index = next
		s.faceUp = false
	}
	return nil
}

// Back discards the cards and returns to selecting.
func (s *FlashcardSession) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.FlashcardSelecting {
		return transitionError("go back", s.phase)
	}
	s.epoch++
	s.phase = domain.FlashcardSelecting
	s.progress = domain.Progress{}
	s.cards = nil
	s.index = 0
	s.faceUp = false
	return nil
}

// Export writes the current cards as duplex sheets.
func (s *FlashcardSession) Export(w io.Writer) error {
	s.mu.Lock()
	if s.phase != domain.FlashcardReviewing {
		s.mu.Unlock()
		return transitionError("export", s.phase)
	}
	cards := slices.Clone(s.cards)
	s.mu.Unlock()

	if s.export == nil {
		return domain.ErrNotImplemented
	}
	return s.export.Write(w, cards)
}

// QuizSession is the quiz state machine. It is safe for concurrent use.
type QuizSession struct {
	docs driving.DocumentService
	gen  driving.GenerationService

	mu        sync.Mutex
	phase     domain.QuizPhase
	selected  selection
	epoch     uint64
	progress  domain.Progress
	questions []domain.QuizQuestion
	answers   map[int]string
	index     int
	result    domain.QuizResult
}

// NewQuizSession creates a session in the selecting phase.
func NewQuizSession(docs driving.DocumentService, gen driving.GenerationService) *QuizSession {
	return &QuizSession{
		docs:    docs,
		gen:     gen,
		phase:   domain.QuizSelecting,
		answers: make(map[int]string),
	}
}

// Phase returns the current phase.
func (s *QuizSession) Phase() domain.QuizPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Selected returns the selected document IDs in selection order.
func (s *QuizSession) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.list()
}

// IsSelected reports whether a document is selected.
func (s *QuizSession) IsSelected(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.has(documentID)
}

// Toggle selects or deselects a document.
func (s *QuizSession) Toggle(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizSelecting {
		return transitionError("change selection", s.phase)
	}
	s.selected.toggle(documentID)
	return nil
}

// Begin starts a generation request from selecting, or regenerates from results.
func (s *QuizSession) Begin(ctx context.Context) (driving.GenerationTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizSelecting && s.phase != domain.QuizResults {
		return driving.GenerationTicket{}, transitionError("generate", s.phase)
	}

	ticket, err := s.selected.ticket(ctx, s.docs, s.epoch+1)
	if err != nil {
		return driving.GenerationTicket{}, err
	}
	s.epoch = ticket.Epoch
	s.phase = domain.QuizGenerating
	s.progress = domain.Progress{Total: len(ticket.Documents)}
	s.discard()
	return ticket, nil
}

// Track returns a progress callback bound to epoch.
func (s *QuizSession) Track(epoch uint64) driving.ProgressFunc {
	return progressTracker{mu: &s.mu, epoch: &s.epoch, progress: &s.progress}.track(epoch)
}

// Complete applies the questions of a finished request.
func (s *QuizSession) Complete(epoch uint64, questions []domain.QuizQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.phase != domain.QuizGenerating {
		logger.Debug("discarding quiz from epoch %d (current %d)", epoch, s.epoch)
		return domain.ErrStaleGeneration
	}
	s.progress.Completed = s.progress.Total
	if len(questions) == 0 {
		s.phase = domain.QuizSelecting
		return domain.ErrEmptyBatch
	}
	s.questions = slices.Clone(questions)
	s.answers = make(map[int]string)
	s.index = 0
	s.phase = domain.QuizAnswering
	return nil
}

// Generate runs a full generation synchronously.
func (s *QuizSession) Generate(ctx context.Context) error {
	ticket, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	questions := s.gen.QuizBatch(ctx, ticket.Documents, s.Track(ticket.Epoch))
	return s.Complete(ticket.Epoch, questions)
}

// Progress returns the progress of the current request.
func (s *QuizSession) Progress() domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Current returns the question being answered.
func (s *QuizSession) Current() (driving.QuizView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizAnswering || len(s.questions) == 0 {
		return driving.QuizView{}, false
	}
	q := s.questions[s.index]
	chosen, answered := s.answers[s.index]
	return driving.QuizView{
		Question: q,
		Index:    s.index,
		Total:    len(s.questions),
		Options:  q.Options(),
		Chosen:   chosen,
		Answered: answered,
		IsLast:   s.index == len(s.questions)-1,
	}, true
}

// Select records an answer for the current question if it has none yet.
func (s *QuizSession) Select(option string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizAnswering {
		return false, transitionError("answer", s.phase)
	}
	if _, done := s.answers[s.index]; done {
		return false, nil
	}
	if !slices.Contains(s.questions[s.index].Options(), option) {
		return false, fmt.Errorf("%w: %q is not an option", domain.ErrInvalidInput, option)
	}
	s.answers[s.index] = option
	return true, nil
}

// Next moves to the next question, clamped at the last.
func (s *QuizSession) Next() error {
	return s.move(1)
}

// Prev moves to the previous question, clamped at the first.
func (s *QuizSession) Prev() error {
	return s.move(-1)
}

func (s *QuizSession) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizAnswering {
		return transitionError("navigate", s.phase)
	}
	s.index = max(0, min(s.index+delta, len(s.questions)-1))
	return nil
}

// Finish scores the quiz and moves to results.
func (s *QuizSession) Finish() (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizAnswering {
		return domain.QuizResult{}, transitionError("finish", s.phase)
	}
	if s.index != len(s.questions)-1 {
		return domain.QuizResult{}, fmt.Errorf("%w: finish is only available at the last question", domain.ErrInvalidTransition)
	}
	s.result = ScoreQuiz(s.questions, s.answers)
	s.phase = domain.QuizResults
	return s.result, nil
}

// Result returns the score of a finished quiz.
func (s *QuizSession) Result() (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizResults {
		return domain.QuizResult{}, transitionError("show results", s.phase)
	}
	return s.result, nil
}

// Retake clears the answers and restarts the same questions.
func (s *QuizSession) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.QuizResults {
		return transitionError("retake", s.phase)
	}
	s.answers = make(map[int]string)
	s.index = 0
	s.result = domain.QuizResult{}
	s.phase = domain.QuizAnswering
	return nil
}

// ChangeStandards returns to selecting, keeping the selection. Results of an
// in-flight generation become stale.
func (s *QuizSession) ChangeStandards() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.QuizSelecting {
		return transitionError("change standards", s.phase)
	}
	s.epoch++
	s.phase = domain.QuizSelecting
	s.progress = domain.Progress{}
	s.discard()
	return nil
}

func (s *QuizSession) discard() {
	s.questions = nil
	s.answers = make(map[int]string)
	s.index = 0
	s.result = domain.QuizResult{}
}

// ScoreQuiz scores answers keyed by question index. Unanswered questions count
// as incorrect.
func ScoreQuiz(questions []domain.QuizQuestion, answers map[int]string) domain.QuizResult {
	result := domain.QuizResult{
		Total:  len(questions),
		Review: make([]domain.QuizReviewItem, 0, len(questions)),
	}
	for i, q := range questions {
		chosen, answered := answers[i]
		correct := answered && q.IsCorrect(chosen)
		if correct {
			result.CorrectCount++
		}
		result.Review = append(result.Review, domain.QuizReviewItem{
			Question: q,
			Chosen:   chosen,
			Answered: answered,
			Correct:  correct,
		})
	}
	if result.Total > 0 {
		result.Score = int(math.Round(100 * float64(result.CorrectCount) / float64(result.Total)))
	}
	return result
}
