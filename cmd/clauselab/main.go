// Command clauselab studies engineering standards with grounded, cited
// answers, flashcards and quizzes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/clauselab/internal/adapters/driven/ai"
	"github.com/custodia-labs/clauselab/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clauselab/internal/adapters/driven/export"
	"github.com/custodia-labs/clauselab/internal/adapters/driven/pdf"
	"github.com/custodia-labs/clauselab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/cli"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/core/services"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settingsService := services.NewSettingsService(openConfigStore(), ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reading settings, using defaults: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	models := ai.Init(&settings.LLM)
	defer models.Close()
	for _, w := range models.Warnings {
		logger.Warn("%s", w)
	}

	docStore := memory.NewDocumentStore()
	engine := pdf.New()
	documentService := services.NewDocumentService(services.NewIngestionService(engine), docStore)
	resolver := services.NewCitationResolver(docStore)
	viewerService := services.NewViewerService(resolver, docStore, engine, settings.Viewer.DefaultScale)
	exportService := services.NewExportService(export.NewSheetWriter("Flashcards"))

	generationService := services.NewGenerationService(models.LLMService, settings.Generation)
	if prompts, err := file.NewPromptStore("", services.DefaultPrompts); err == nil {
		generationService.SetPromptStore(prompts)
	} else {
		logger.Warn("prompt files unavailable, using built-in prompts: %v", err)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Document:   documentService,
		Generation: generationService,
		Export:     exportService,
		Resolver:   resolver,
		Viewer:     viewerService,
		Settings:   settingsService,
		NewFlashcardSession: func() driving.FlashcardSession {
			return services.NewFlashcardSession(documentService, generationService, exportService)
		},
		NewQuizSession: func() driving.QuizSession {
			return services.NewQuizSession(documentService, generationService)
		},
	})

	return cli.ExecuteContext(ctx)
}

// openConfigStore opens ~/.clauselab/config.toml, falling back to an in-memory
// store when the home directory is not writable.
func openConfigStore() driven.ConfigStore {
	store, err := file.NewConfigStore("")
	if err == nil {
		return store
	}
	logger.Warn("config file unavailable, settings will not persist: %v", err)
	return memory.NewConfigStore()
}
