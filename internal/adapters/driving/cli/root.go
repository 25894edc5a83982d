// Package cli implements the clauselab command line interface with cobra.
// Documents live only for the duration of a process, so every command that
// needs them loads PDFs from --doc paths before it runs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/connectors/filesystem"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services holds the core services the commands drive.
type Services struct {
	Document   driving.DocumentService
	Generation driving.GenerationService
	Export     driving.ExportService
	Resolver   driving.CitationResolver
	Viewer     driving.ViewerService
	Settings   driving.SettingsService

	// NewFlashcardSession and NewQuizSession create fresh study sessions.
	NewFlashcardSession func() driving.FlashcardSession
	NewQuizSession      func() driving.QuizSession
}

var (
	documentService   driving.DocumentService
	generationService driving.GenerationService
	exportService     driving.ExportService
	resolverService   driving.CitationResolver
	viewerService     driving.ViewerService
	settingsService   driving.SettingsService
	newFlashcards     func() driving.FlashcardSession
	newQuiz           func() driving.QuizSession
)

var (
	verbose  bool
	docPaths []string
)

var rootCmd = &cobra.Command{
	Use:   "clauselab",
	Short: "Study engineering standards with grounded, cited answers",
	Long: `Clauselab loads PDF standards and answers questions about them, builds
flashcards and multiple-choice quizzes, and traces every answer back to the
standard, clause and page it came from.

Load documents with --doc (files or folders, repeatable):
  clauselab --doc NR-L2-TRK-001.pdf ask "What is the minimum ballast depth?"
  clauselab --doc ./standards flashcards --export`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write diagnostic logs to stderr")
	rootCmd.PersistentFlags().StringSliceVarP(&docPaths, "doc", "d", nil, "PDF file or folder to load (repeatable)")
}

// SetVersion sets the version reported by the version command and the MCP server.
func SetVersion(v string) {
	version = v
}

// SetServices wires the core services into the commands.
func SetServices(s Services) {
	documentService = s.Document
	generationService = s.Generation
	exportService = s.Export
	resolverService = s.Resolver
	viewerService = s.Viewer
	settingsService = s.Settings
	newFlashcards = s.NewFlashcardSession
	newQuiz = s.NewQuizSession
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func persistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if len(docPaths) == 0 {
		return nil
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}
	loaded, err := loadDocuments(commandContext(cmd), cmd, docPaths)
	if err != nil {
		return err
	}
	logger.Info("loaded %d document(s)", loaded)
	return nil
}

// loadDocuments uploads every PDF named by paths. Folders contribute the PDFs
// directly inside them. A file that fails is reported and skipped.
func loadDocuments(ctx context.Context, cmd *cobra.Command, paths []string) (int, error) {
	var uploads []driving.Upload
	for _, raw := range paths {
		path := filesystem.ResolvePath(raw)
		info, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}

		if info.IsDir() {
			found, errs := filesystem.New(path).Scan(ctx)
			for _, e := range errs {
				cmd.PrintErrf("Skipped: %v\n", e)
			}
			uploads = append(uploads, found...)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("Skipped %s: %v\n", path, err)
			continue
		}
		uploads = append(uploads, driving.Upload{Filename: filepath.Base(path), Data: data})
	}

	loaded := 0
	for _, res := range documentService.Upload(ctx, uploads) {
		if res.Err != nil {
			cmd.PrintErrf("Skipped %s: %v\n", res.Filename, res.Err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// loadedDocuments returns the session's documents or an error if none are loaded.
func loadedDocuments(ctx context.Context) ([]*domain.Document, error) {
	if documentService == nil {
		return nil, errors.New("document service not configured")
	}
	docs, err := documentService.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, errNoDocuments
	}
	return docs, nil
}

// findDocument matches ref against document IDs first and standard names second.
func findDocument(ctx context.Context, ref string) (*domain.Document, error) {
	if doc, err := documentService.Get(ctx, ref); err == nil {
		return doc, nil
	}
	if resolverService == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	res, err := resolverService.Resolve(ctx, ref, 1, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	return res.Document, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
