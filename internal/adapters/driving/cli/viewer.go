package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

var (
	resolveClause string
	renderScale   float64
	renderOut     string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [standard] [page]",
	Short: "Open the page a citation points to",
	Long: `Matches a citation's standard against the loaded documents (ignoring
case and a trailing .pdf) and prints the text of the cited page. Pages
outside the document are clamped to its first or last page.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runResolve,
}

var renderCmd = &cobra.Command{
	Use:   "render [standard] [page]",
	Short: "Render a cited page as PNG",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRender,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveClause, "clause", "c", "", "clause to highlight in the output")
	renderCmd.Flags().Float64Var(&renderScale, "scale", 0, "zoom factor between 0.5 and 4 (default from settings)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "page.png", "output file")
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(renderCmd)
}

func citationFromArgs(args []string, clause string) (domain.Citation, error) {
	c := domain.Citation{Standard: args[0], Clause: clause, Page: 1}
	if len(args) > 1 {
		page, err := strconv.Atoi(args[1])
		if err != nil {
			return c, fmt.Errorf("%w: page must be a number", domain.ErrInvalidInput)
		}
		c.Page = domain.CoercePage(page)
	}
	return c, nil
}

func openCitation(cmd *cobra.Command, args []string, clause string) (domain.ViewerRequest, error) {
	if viewerService == nil {
		return domain.ViewerRequest{}, errors.New("viewer service not configured")
	}
	citation, err := citationFromArgs(args, clause)
	if err != nil {
		return domain.ViewerRequest{}, err
	}
	req, ok := viewerService.Open(commandContext(cmd), citation)
	if !ok {
		return domain.ViewerRequest{}, fmt.Errorf("%w: %s", domain.ErrResolutionMiss, citation.Standard)
	}
	return req, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	req, err := openCitation(cmd, args, resolveClause)
	if err != nil {
		return err
	}

	view, err := viewerService.Page(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	cmd.Printf("%s - page %d of %d\n", view.Document.OriginalFilename, view.Page, view.PageCount)
	if view.Clause != "" {
		cmd.Printf("Clause %s\n", view.Clause)
	}
	cmd.Println()
	cmd.Println(view.Text)
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	req, err := openCitation(cmd, args, "")
	if err != nil {
		return err
	}
	if renderScale != 0 {
		req.Scale = renderScale
	}

	data, err := viewerService.Render(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := os.WriteFile(renderOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", renderOut, err)
	}
	cmd.Printf("Wrote %s\n", renderOut)
	return nil
}
