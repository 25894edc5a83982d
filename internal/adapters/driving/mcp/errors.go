// Package mcp provides an MCP (Model Context Protocol) server adapter for Clauselab.
// It lets AI assistants load standards, ask grounded questions and generate
// study material with citations they can trace back to a page.
package mcp

import "errors"

var (
	// ErrMissingDocumentService is returned when the document service is not provided.
	ErrMissingDocumentService = errors.New("mcp: document service is required")

	// ErrGenerationUnavailable is returned by generation tools when no model is configured.
	ErrGenerationUnavailable = errors.New("mcp: no model configured")

	// ErrViewerUnavailable is returned by page tools when the viewer is not provided.
	ErrViewerUnavailable = errors.New("mcp: viewer service is not configured")
)
