package tui

import (
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// Ports holds the driving port interfaces the TUI depends on.
// Only Document is required; screens whose port is missing show an
// unavailable notice instead of failing.
type Ports struct {
	// Document manages the loaded standards.
	Document driving.DocumentService

	// Generation answers questions and builds study material.
	Generation driving.GenerationService

	// Resolver maps citations to loaded documents.
	Resolver driving.CitationResolver

	// Viewer shows cited pages.
	Viewer driving.ViewerService

	// Settings manages application configuration.
	Settings driving.SettingsService

	// NewFlashcardSession creates a flashcard study session.
	NewFlashcardSession func() driving.FlashcardSession

	// NewQuizSession creates a quiz session.
	NewQuizSession func() driving.QuizSession
}

// Validate checks that required ports are present.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}

// NewPorts creates a Ports instance with the given services.
func NewPorts(
	document driving.DocumentService,
	generation driving.GenerationService,
	viewer driving.ViewerService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Document:   document,
		Generation: generation,
		Viewer:     viewer,
		Settings:   settings,
	}
}
