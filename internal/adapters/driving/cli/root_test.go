package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

func TestRootCmd_DocPathMissing(t *testing.T) {
	setupServices(t, nil)

	_, err := execute(t, "", "--doc", filepath.Join(t.TempDir(), "missing.pdf"), "document", "list")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRootCmd_DocFolderWithoutPDFs(t *testing.T) {
	setupServices(t, nil)

	out, err := execute(t, "", "--doc", t.TempDir(), "document", "list")

	assert.NoError(t, err)
	assert.Contains(t, out, "No documents loaded.")
}

func TestRootCmd_DocWithoutDocumentService(t *testing.T) {
	t.Cleanup(resetFlags)
	SetServices(Services{})

	_, err := execute(t, "", "--doc", "a.pdf", "version")

	assert.EqualError(t, err, "document service not configured")
}

func TestTUIPorts(t *testing.T) {
	setupServices(t, &mockGeneration{}, testDocuments()...)

	ports := tuiPorts()

	assert.NoError(t, ports.Validate())
	assert.NotNil(t, ports.Resolver)
	assert.NotNil(t, ports.Viewer)
	assert.NotNil(t, ports.NewFlashcardSession)
	assert.NotNil(t, ports.NewQuizSession)
}
