package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for Clauselab.

The TUI lets you load standards, ask questions, study flashcards, take
quizzes and open every citation at the page it points at. PDFs dropped into
the configured watch folder are loaded while it runs.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Submit
  Space    - Toggle a standard / Flip a card
  g        - Generate
  c        - Open citation
  Esc      - Back
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the wired services.
func tuiPorts() *tui.Ports {
	ports := tui.NewPorts(documentService, generationService, viewerService, settingsService)
	ports.Resolver = resolverService
	ports.NewFlashcardSession = newFlashcards
	ports.NewQuizSession = newQuiz
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx := commandContext(cmd)
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen())

	// The watch folder keeps loading standards while the TUI runs
	startBackgroundWatch(ctx, func(res driving.UploadResult) {
		p.Send(messages.DocumentIngested{Filename: res.Filename, Document: res.Document, Err: res.Err})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
