package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// Ensure CitationResolver implements the interface.
var _ driving.CitationResolver = (*CitationResolver)(nil)

// NormalizeStandardName is the single normalisation rule for citation
// matching: lower-case, trim, drop a trailing .pdf, trim again.
func NormalizeStandardName(name string) string {
	n := strings.TrimSpace(strings.ToLower(name))
	n = strings.TrimSuffix(n, ".pdf")
	return strings.TrimSpace(n)
}

// StandardNamesMatch reports whether two names are equal after normalisation.
func StandardNamesMatch(a, b string) bool {
	return NormalizeStandardName(a) == NormalizeStandardName(b)
}

// CitationResolver maps citations to loaded documents. Matching is
// best-effort because the model is free to misspell a standard.
type CitationResolver struct {
	docStore driven.DocumentStore
}

// NewCitationResolver creates a resolver over the session's document set.
func NewCitationResolver(docStore driven.DocumentStore) *CitationResolver {
	return &CitationResolver{docStore: docStore}
}

// Resolve returns the first document, in upload order, whose original
// filename or display name matches standardRef. Pages below 1 become 1.
func (r *CitationResolver) Resolve(
	ctx context.Context,
	standardRef string,
	page int,
	clause string,
) (*driving.Resolution, error) {
	if r.docStore == nil {
		return nil, domain.ErrNotImplemented
	}

	docs, err := r.docStore.List(ctx)
	if err != nil {
		return nil, err
	}

	target := NormalizeStandardName(standardRef)
	for _, doc := range docs {
		if NormalizeStandardName(doc.OriginalFilename) == target ||
			NormalizeStandardName(doc.DisplayName) == target {
			return &driving.Resolution{
				Document: doc,
				Page:     domain.CoercePage(page),
				Clause:   clause,
			}, nil
		}
	}

	logger.Named("resolver").Warnw("citation does not match any loaded document",
		"standard", standardRef, "page", page, "clause", clause)
	return nil, domain.ErrResolutionMiss
}
