package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Clauselab resources.
	uriScheme = "clauselab://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Standards loaded in this session",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for the page-tagged text of a document.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-text",
		Description: "Extracted text of a document with [Page N] markers",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)

	// Template for a single page.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/pages/{page}",
		Name:        "document-page",
		Description: "Text of one page of a document; out-of-range pages are clamped",
		MIMEType:    "text/plain",
	}, s.handlePageResource)
}

// handleDocumentsResource returns all loaded documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]DocumentOutput, len(docs))
	for i, d := range docs {
		infos[i] = documentOutput(d)
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentTextResource returns the page-tagged text of a document.
func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, _, ok := parseDocumentURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.PageTaggedText,
		}},
	}, nil
}

// handlePageResource returns the text of one page.
func (s *Server) handlePageResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Viewer == nil {
		return nil, ErrViewerUnavailable
	}

	docID, page, ok := parseDocumentURI(req.Params.URI)
	if !ok || page == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	view, err := s.ports.Viewer.Page(ctx, domain.ViewerRequest{DocumentID: docID, Page: page})
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     view.Text,
		}},
	}, nil
}

// parseDocumentURI splits clauselab://documents/{id}[/pages/{page}].
// page is 0 when the URI names the whole document.
func parseDocumentURI(uri string) (docID string, page int, ok bool) {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(uri, prefix)

	id, pagePart, hasPage := strings.Cut(rest, "/pages/")
	if id == "" || strings.Contains(id, "/") {
		return "", 0, false
	}
	if !hasPage {
		return id, 0, true
	}

	n, err := strconv.Atoi(pagePart)
	if err != nil {
		return "", 0, false
	}
	return id, domain.CoercePage(n), true
}
