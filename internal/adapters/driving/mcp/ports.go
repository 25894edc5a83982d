package mcp

import (
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document manages the session's document set.
	Document driving.DocumentService

	// Generation answers questions and builds flashcards and quizzes.
	Generation driving.GenerationService

	// Export writes flashcard sheets.
	Export driving.ExportService

	// Viewer opens cited pages.
	Viewer driving.ViewerService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	// Generation, export and viewer degrade to tool errors when absent
	return nil
}

func (p *Ports) generationReady() bool {
	return p.Generation != nil && p.Generation.Available()
}
