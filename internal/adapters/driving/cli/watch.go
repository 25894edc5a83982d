package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/connectors/filesystem"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest PDFs as they appear in a folder",
	Long: `Loads the PDFs already in the folder, then keeps loading new or changed
PDFs until interrupted. Without an argument the folder from
'clauselab settings watch' is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var dir string
	if len(args) == 1 {
		dir = filesystem.ResolvePath(args[0])
	} else {
		dir = configuredWatchDir()
	}
	if dir == "" {
		return errors.New("no folder given and no watch folder configured")
	}

	connector := filesystem.New(dir)
	defer func() { _ = connector.Close() }()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	err := connector.AutoIngest(commandContext(cmd), documentService, func(res driving.UploadResult) {
		if res.Err != nil {
			cmd.PrintErrf("Skipped %s: %v\n", res.Filename, res.Err)
			return
		}
		cmd.Printf("Loaded %s (%d pages)\n", res.Document.OriginalFilename, res.Document.PageCount)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

// configuredWatchDir returns the watch folder from settings, if any.
func configuredWatchDir() string {
	if settingsService == nil {
		return ""
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reading settings: %v", err)
		return ""
	}
	return settings.Watch.Dir
}

// startBackgroundWatch auto-ingests the configured watch folder for the
// lifetime of ctx. It is used by the long-running tui and mcp commands.
// report, if set, receives every outcome after it is logged.
func startBackgroundWatch(ctx context.Context, report filesystem.ReportFunc) {
	dir := configuredWatchDir()
	if dir == "" || documentService == nil {
		return
	}
	connector := filesystem.New(dir)
	go func() {
		defer func() { _ = connector.Close() }()
		err := connector.AutoIngest(ctx, documentService, func(res driving.UploadResult) {
			if res.Err != nil {
				logger.Warn("watch: skipped %s: %v", res.Filename, res.Err)
			} else {
				logger.Info("watch: loaded %s", res.Filename)
			}
			if report != nil {
				report(res)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watch stopped: %v", err)
		}
	}()
}
