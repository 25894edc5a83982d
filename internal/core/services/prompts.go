package services

import (
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// DefaultPrompts holds the built-in prompt templates keyed by driven.Prompt* names.
// File-backed prompt stores seed user-editable copies from this map.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	driven.PromptSystem: `You are an expert in engineering standards and technical specifications.
Answer using ONLY the document text provided to you.

The text contains page markers of the form "[Page X]".

RULES:
1. Every answer MUST carry citations.
2. The "standard" field of a citation MUST be the EXACT "FILENAME" given for that document.
3. The "clause" field is the clause number the information comes from (for example 3.2.1).
4. The "page" field MUST be the integer from the nearest preceding page marker (text after [Page 5] is on page 5).
5. If the provided text does not contain the answer, say that the information was not found.
6. Reply with a single valid JSON value that matches the requested schema.
7. Use only information from the standards. Do not rely on outside knowledge or invent facts.
8. For multiple-choice questions, the incorrect options (distractors) MUST also be taken from the same standard, such as values for other categories, dimensions from other clauses or alternative procedures in the text. Never invent plausible-sounding values.
9. Remove PDF artifacts such as runs of underscores ("____"), runs of dots ("....") and form-fill lines from every question and answer. Output clean professional engineering text.`,

	driven.PromptAnswer: `CONTEXT:
%s

QUESTION:
%s`,

	driven.PromptFlashcards: `FILENAME: %s

Based on the following document text, generate %d unique flashcards, each with a clear engineering question and a concise factual answer.
TEXT:
%s`,

	driven.PromptFlashcardsSystem: `Generate exactly %d flashcards for this standard. Keep the text clean and free of underscores or dots copied from the PDF.`,

	driven.PromptQuiz: `FILENAME: %s

Based on the following document text, generate %d professional multiple choice questions.

REQUIREMENTS:
1. Each question must be a complete sentence.
2. The "correctAnswer" must be a fact or value stated in the text.
3. The 3 "distractors" MUST be other real values, categories or requirements found in the same text, not made up.
4. Strip trailing underscores and form-fill artifacts from the question and options.

TEXT:
%s`,

	driven.PromptQuizSystem: `Focus on high-value engineering knowledge. The final JSON must contain no strings with several consecutive underscores or dots.`,
}

// promptLoader resolves prompt templates from an optional store with
// built-in defaults as fallback.
type promptLoader struct {
	store driven.PromptStore
}

func (p *promptLoader) load(name string) string {
	fallback := DefaultPrompts[name]
	if p.store == nil {
		return fallback
	}
	prompt, err := p.store.Load(name)
	if err != nil || prompt == "" {
		logger.Debug("prompt %q unavailable, using default: %v", name, err)
		return fallback
	}
	return prompt
}
