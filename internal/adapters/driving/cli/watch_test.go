package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/clauselab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clauselab/internal/core/services"
)

func TestWatchCmd_NoFolder(t *testing.T) {
	setupServices(t, nil)

	_, err := execute(t, "", "watch")

	assert.EqualError(t, err, "no folder given and no watch folder configured")
}

func TestConfiguredWatchDir(t *testing.T) {
	setupServices(t, nil)
	assert.Empty(t, configuredWatchDir())

	settingsService = services.NewSettingsService(memory.NewConfigStore(map[string]any{
		"watch.dir": "/srv/standards",
	}), nil)

	assert.Equal(t, "/srv/standards", configuredWatchDir())
}
