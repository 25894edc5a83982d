package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
)

func newStudyFixture(t *testing.T, llm driven.LLMService) (*DocumentService, *GenerationService) {
	t.Helper()
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "A.pdf", "alpha")))
	require.NoError(t, store.Save(ctx, testDocument("b", "B.pdf", "beta")))
	return NewDocumentService(nil, store), newTestGeneration(llm)
}

func testQuestions(n int) []domain.QuizQuestion {
	qs := make([]domain.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, domain.QuizQuestion{
			ID:            fmt.Sprintf("q%d", i),
			Question:      fmt.Sprintf("question %d", i),
			CorrectAnswer: "right",
			Distractors:   []string{"wrong 1", "wrong 2", "wrong 3"},
			Citations:     []domain.Citation{},
		})
	}
	return qs
}

// --- Flashcard session ---

func TestFlashcardSession_Toggle(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)

	require.NoError(t, s.Toggle("a"))
	require.NoError(t, s.Toggle("b"))
	require.NoError(t, s.Toggle("a"))

	assert.Equal(t, []string{"b"}, s.Selected())
	assert.True(t, s.IsSelected("b"))
	assert.False(t, s.IsSelected("a"))
}

func TestFlashcardSession_Generate_NoSelection(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)

	err := s.Generate(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoDocumentsSelected)
	assert.Equal(t, domain.FlashcardSelecting, s.Phase())
}

func TestFlashcardSession_Generate_Review(t *testing.T) {
	docs, gen := newStudyFixture(t, staticLLM(flashcardJSON("A.pdf", 3)))
	s := NewFlashcardSession(docs, gen, nil)
	require.NoError(t, s.Toggle("a"))
	require.NoError(t, s.Toggle("b"))

	require.NoError(t, s.Generate(context.Background()))

	assert.Equal(t, domain.FlashcardReviewing, s.Phase())
	assert.Len(t, s.Cards(), 6)
	assert.Equal(t, domain.Progress{Completed: 2, Total: 2}, s.Progress())

	_, index, faceUp, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 0, index)
	assert.False(t, faceUp)

	assert.ErrorIs(t, s.Toggle("a"), domain.ErrInvalidTransition)
}

func TestFlashcardSession_Navigation(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)
	require.NoError(t, s.Toggle("a"))
	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Complete(ticket.Epoch, testCards(3)))

	require.NoError(t, s.Flip())
	_, _, faceUp, _ := s.Current()
	assert.True(t, faceUp)

	// Prev at the first card is a no-op and keeps the face.
	require.NoError(t, s.Prev())
	_, index, faceUp, _ := s.Current()
	assert.Equal(t, 0, index)
	assert.True(t, faceUp)

	require.NoError(t, s.Next())
	_, index, faceUp, _ = s.Current()
	assert.Equal(t, 1, index)
	assert.False(t, faceUp)

	require.NoError(t, s.Next())
	require.NoError(t, s.Flip())
	require.NoError(t, s.Next())
	card, index, faceUp, _ := s.Current()
	assert.Equal(t, 2, index)
	assert.True(t, faceUp)
	assert.Equal(t, "c2", card.ID)
}

func TestFlashcardSession_Back_DiscardsAndRejectsStale(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)
	require.NoError(t, s.Toggle("a"))

	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Back())

	assert.ErrorIs(t, s.Complete(ticket.Epoch, testCards(2)), domain.ErrStaleGeneration)
	assert.Equal(t, domain.FlashcardSelecting, s.Phase())
	assert.Empty(t, s.Cards())
	assert.Equal(t, []string{"a"}, s.Selected())
}

func TestFlashcardSession_Regenerate_SupersedesEarlierTicket(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)
	require.NoError(t, s.Toggle("a"))

	first, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Complete(first.Epoch, testCards(2)))

	second, err := s.Begin(context.Background())
	require.NoError(t, err)
	assert.Greater(t, second.Epoch, first.Epoch)
	assert.Equal(t, domain.FlashcardGenerating, s.Phase())

	s.Track(first.Epoch)(domain.Progress{Completed: 1, Total: 1})
	assert.Equal(t, 0, s.Progress().Completed)

	assert.ErrorIs(t, s.Complete(first.Epoch, testCards(5)), domain.ErrStaleGeneration)
	require.NoError(t, s.Complete(second.Epoch, testCards(4)))
	assert.Len(t, s.Cards(), 4)
}

func TestFlashcardSession_Track_KeepsHighest(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)
	require.NoError(t, s.Toggle("a"))
	require.NoError(t, s.Toggle("b"))
	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)

	track := s.Track(ticket.Epoch)
	track(domain.Progress{Completed: 2, Total: 2})
	track(domain.Progress{Completed: 1, Total: 2})

	assert.Equal(t, domain.Progress{Completed: 2, Total: 2}, s.Progress())
}

func TestFlashcardSession_Complete_EmptyBatch(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewFlashcardSession(docs, gen, nil)
	require.NoError(t, s.Toggle("a"))
	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Complete(ticket.Epoch, nil), domain.ErrEmptyBatch)
	assert.Equal(t, domain.FlashcardSelecting, s.Phase())
}

func TestFlashcardSession_Export(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	writer := &mockSheetWriter{}
	s := NewFlashcardSession(docs, gen, NewExportService(writer))
	var buf bytes.Buffer

	assert.ErrorIs(t, s.Export(&buf), domain.ErrInvalidTransition)

	require.NoError(t, s.Toggle("a"))
	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Complete(ticket.Epoch, testCards(7)))

	require.NoError(t, s.Export(&buf))
	assert.Len(t, writer.pairs, 2)
	assert.Equal(t, domain.FlashcardReviewing, s.Phase())
}

// --- Quiz session ---

func startQuiz(t *testing.T, n int) *QuizSession {
	t.Helper()
	docs, gen := newStudyFixture(t, nil)
	s := NewQuizSession(docs, gen)
	require.NoError(t, s.Toggle("a"))
	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Complete(ticket.Epoch, testQuestions(n)))
	return s
}

func TestQuizSession_Generate(t *testing.T) {
	docs, gen := newStudyFixture(t, staticLLM(quizJSON("A.pdf", 4)))
	s := NewQuizSession(docs, gen)
	require.NoError(t, s.Toggle("a"))

	require.NoError(t, s.Generate(context.Background()))

	assert.Equal(t, domain.QuizAnswering, s.Phase())
	view, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, []string{"right", "w1", "w2", "w3"}, view.Options)
}

func TestQuizSession_Select_FirstAnswerIsFinal(t *testing.T) {
	s := startQuiz(t, 2)

	recorded, err := s.Select("wrong 1")
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = s.Select("right")
	require.NoError(t, err)
	assert.False(t, recorded)

	view, _ := s.Current()
	assert.True(t, view.Answered)
	assert.Equal(t, "wrong 1", view.Chosen)
}

func TestQuizSession_Select_RejectsUnknownOption(t *testing.T) {
	s := startQuiz(t, 1)

	recorded, err := s.Select("made up")

	assert.False(t, recorded)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	view, _ := s.Current()
	assert.False(t, view.Answered)
}

func TestQuizSession_Finish_OnlyAtLast(t *testing.T) {
	s := startQuiz(t, 3)

	_, err := s.Finish()
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	view, _ := s.Current()
	assert.Equal(t, 2, view.Index)
	assert.True(t, view.IsLast)

	result, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, domain.QuizResults, s.Phase())
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 3, result.Total)
}

func TestQuizSession_Score(t *testing.T) {
	s := startQuiz(t, 5)

	choices := []string{"right", "right", "wrong 2", "right", ""}
	for i, c := range choices {
		if c != "" {
			_, err := s.Select(c)
			require.NoError(t, err)
		}
		if i < len(choices)-1 {
			require.NoError(t, s.Next())
		}
	}

	result, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, 60, result.Score)
	assert.Equal(t, 3, result.CorrectCount)
	require.Len(t, result.Review, 5)
	assert.False(t, result.Review[2].Correct)
	assert.False(t, result.Review[4].Answered)

	again, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestQuizSession_Retake(t *testing.T) {
	s := startQuiz(t, 1)
	_, err := s.Select("right")
	require.NoError(t, err)
	_, err = s.Finish()
	require.NoError(t, err)

	require.NoError(t, s.Retake())

	assert.Equal(t, domain.QuizAnswering, s.Phase())
	view, _ := s.Current()
	assert.Equal(t, 0, view.Index)
	assert.False(t, view.Answered)
	assert.Equal(t, "q0", view.Question.ID)
}

func TestQuizSession_RegenerateKeepsSelection(t *testing.T) {
	s := startQuiz(t, 1)
	_, err := s.Finish()
	require.NoError(t, err)

	ticket, err := s.Begin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.QuizGenerating, s.Phase())
	require.Len(t, ticket.Documents, 1)
	assert.Equal(t, "a", ticket.Documents[0].ID)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestQuizSession_ChangeStandards(t *testing.T) {
	s := startQuiz(t, 1)
	_, err := s.Finish()
	require.NoError(t, err)

	require.NoError(t, s.ChangeStandards())

	assert.Equal(t, domain.QuizSelecting, s.Phase())
	assert.Equal(t, []string{"a"}, s.Selected())
	assert.ErrorIs(t, s.ChangeStandards(), domain.ErrInvalidTransition)
}

func TestQuizSession_InvalidTransitions(t *testing.T) {
	docs, gen := newStudyFixture(t, nil)
	s := NewQuizSession(docs, gen)

	_, err := s.Select("x")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.Next(), domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.Retake(), domain.ErrInvalidTransition)
	_, err = s.Result()
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestScoreQuiz(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		answers map[int]string
		want    int
	}{
		{"none", 0, nil, 0},
		{"all correct", 3, map[int]string{0: "right", 1: "right", 2: "right"}, 100},
		{"one of three", 3, map[int]string{1: "right"}, 33},
		{"two of three", 3, map[int]string{0: "right", 2: "right"}, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreQuiz(testQuestions(tt.n), tt.answers).Score)
		})
	}
}
