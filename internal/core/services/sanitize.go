package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

var (
	underscoreRun = regexp.MustCompile(`_{2,}`)
	dotRun        = regexp.MustCompile(`\.{3,}`)
	spaceRun      = regexp.MustCompile(`[ \t]{2,}`)
)

// newArtifactID assigns ids to artifacts the model left without one.
var newArtifactID = func() string { return uuid.New().String() }

// CleanText strips PDF form-fill artifacts (runs of underscores or dots) and
// collapses the whitespace they leave behind.
func CleanText(s string) string {
	s = underscoreRun.ReplaceAllString(s, " ")
	s = dotRun.ReplaceAllString(s, " ")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseAnswer decodes an answer response. Text that is not JSON yields the
// processing-error answer and a domain.ErrModel error for logging. Any other
// shape problem is repaired silently. The returned Answer is always usable.
func ParseAnswer(raw string) (domain.Answer, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return domain.Answer{Text: domain.AnswerProcessingError, Citations: []domain.Citation{}}, err
	}

	obj, _ := v.(map[string]any)
	text := CleanText(asString(obj["answer"]))
	if text == "" {
		text = domain.AnswerNotFound
	}
	return domain.Answer{Text: text, Citations: asCitations(obj["citations"])}, nil
}

// ParseFlashcards decodes a flashcard batch. A top-level value that is not an
// array yields an empty batch; entries that are not objects are dropped.
func ParseFlashcards(raw string) ([]domain.Flashcard, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return []domain.Flashcard{}, err
	}

	cards := make([]domain.Flashcard, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cards = append(cards, domain.Flashcard{
			ID:        idOrNew(obj["id"]),
			Question:  CleanText(asString(obj["question"])),
			Answer:    CleanText(asString(obj["answer"])),
			Citations: asCitations(obj["citations"]),
		})
	}
	return cards, nil
}

// ParseQuiz decodes a quiz batch. A top-level value that is not an array
// yields an empty batch; entries that are not objects are dropped.
func ParseQuiz(raw string) ([]domain.QuizQuestion, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return []domain.QuizQuestion{}, err
	}

	questions := make([]domain.QuizQuestion, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		questions = append(questions, domain.QuizQuestion{
			ID:            idOrNew(obj["id"]),
			Question:      CleanText(asString(obj["question"])),
			CorrectAnswer: CleanText(asString(obj["correctAnswer"])),
			Distractors:   asStrings(obj["distractors"]),
			Citations:     asCitations(obj["citations"]),
		})
	}
	return questions, nil
}

func decodeArray(raw string) ([]any, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	items, _ := v.([]any)
	return items, nil
}

// decodeJSON parses model output, tolerating a surrounding Markdown code fence.
// Empty output decodes as null.
func decodeJSON(raw string) (any, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", domain.ErrModel, err)
	}
	return v, nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func asStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch item.(type) {
		case string, float64:
			out = append(out, CleanText(asString(item)))
		}
	}
	return out
}

func asCitations(v any) []domain.Citation {
	items, _ := v.([]any)
	out := make([]domain.Citation, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Citation{
			Standard: strings.TrimSpace(asString(obj["standard"])),
			Clause:   strings.TrimSpace(asString(obj["clause"])),
			Page:     domain.CoercePage(obj["page"]),
		})
	}
	return out
}

func idOrNew(v any) string {
	if id := strings.TrimSpace(asString(v)); id != "" {
		return id
	}
	return newArtifactID()
}
