package cli

import "errors"

var (
	errNoDocuments  = errors.New("no documents loaded; pass PDFs with --doc")
	errNoGeneration = errors.New("generation service not configured")
	errNoModel      = errors.New("no model configured; run 'clauselab settings llm'")
)
