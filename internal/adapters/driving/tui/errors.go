package tui

import "errors"

// Port validation errors.
var (
	// ErrMissingDocumentService indicates the document service is nil.
	ErrMissingDocumentService = errors.New("document service is required")

	// ErrInvalidPorts indicates the ports configuration is invalid.
	ErrInvalidPorts = errors.New("invalid ports configuration")
)
