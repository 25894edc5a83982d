package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

func TestParseDocumentURI(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		id     string
		page   int
		wantOK bool
	}{
		{name: "document URI", uri: "clauselab://documents/doc-1", id: "doc-1", wantOK: true},
		{name: "page URI", uri: "clauselab://documents/doc-1/pages/4", id: "doc-1", page: 4, wantOK: true},
		{name: "page zero coerced", uri: "clauselab://documents/doc-1/pages/0", id: "doc-1", page: 1, wantOK: true},
		{name: "non-numeric page", uri: "clauselab://documents/doc-1/pages/four", wantOK: false},
		{name: "invalid prefix", uri: "file://documents/doc-1", wantOK: false},
		{name: "missing id", uri: "clauselab://documents/", wantOK: false},
		{name: "unknown sub-path", uri: "clauselab://documents/doc-1/other", wantOK: false},
		{name: "empty URI", uri: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, page, ok := parseDocumentURI(tt.uri)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.id, id)
				assert.Equal(t, tt.page, page)
			}
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{documents: []*domain.Document{trackDoc()}}})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("clauselab://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "doc-1")
		assert.Contains(t, result.Contents[0].Text, "Track.pdf")
	})

	t.Run("empty set is an empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("clauselab://documents"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{err: errors.New("boom")}})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("clauselab://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentTextResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{Document: &mockDocumentService{documents: []*domain.Document{trackDoc()}}})

	t.Run("returns page-tagged text", func(t *testing.T) {
		result, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("clauselab://documents/doc-1"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "[Page 2]\nballast")
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("clauselab://documents/nope"))
		assert.Error(t, err)
	})
}

func TestServer_handlePageResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page text clamped to the document", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Document: &mockDocumentService{},
			Viewer:   &mockViewerService{doc: trackDoc()},
		})

		result, err := server.handlePageResource(ctx, makeReadResourceRequest("clauselab://documents/doc-1/pages/9"))

		require.NoError(t, err)
		assert.Equal(t, "text of page 3", result.Contents[0].Text)
	})

	t.Run("whole-document URI is not a page", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Document: &mockDocumentService{},
			Viewer:   &mockViewerService{doc: trackDoc()},
		})

		_, err := server.handlePageResource(ctx, makeReadResourceRequest("clauselab://documents/doc-1"))
		assert.Error(t, err)
	})

	t.Run("no viewer", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}})

		_, err := server.handlePageResource(ctx, makeReadResourceRequest("clauselab://documents/doc-1/pages/1"))
		assert.ErrorIs(t, err, ErrViewerUnavailable)
	})
}
