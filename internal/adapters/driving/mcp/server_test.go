package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil document service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, "1.2.0")
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}}, "1.2.0")
		require.NoError(t, err)
		require.NotNil(t, server)

		name, version := server.Implementation()
		assert.Equal(t, "clauselab", name)
		assert.Equal(t, "1.2.0", version)
	})

	t.Run("empty version falls back to dev", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}}, "")
		require.NoError(t, err)

		_, version := server.Implementation()
		assert.Equal(t, DefaultVersion, version)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil document service returns error", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingDocumentService)
	})

	t.Run("document only is valid", func(t *testing.T) {
		assert.NoError(t, (&Ports{Document: &mockDocumentService{}}).Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Document:   &mockDocumentService{},
			Generation: &mockGenerationService{},
			Export:     &mockExportService{},
			Viewer:     &mockViewerService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestPorts_generationReady(t *testing.T) {
	assert.False(t, (&Ports{}).generationReady())
	assert.False(t, (&Ports{Generation: &mockGenerationService{}}).generationReady())
	assert.True(t, (&Ports{Generation: &mockGenerationService{available: true}}).generationReady())
}
