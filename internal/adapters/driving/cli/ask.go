package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the loaded standards",
	Long: `Answers a question using only the loaded documents. Every answer carries
citations of the form "standard - Cl clause (Pg page)".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if generationService == nil {
		return errNoGeneration
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if !generationService.Available() {
		return errNoModel
	}

	ctx := commandContext(cmd)
	query := strings.Join(args, " ")

	docs, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	answer := generationService.Ask(ctx, query, docs)

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	printCitations(cmd, answer.Citations)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	type citation struct {
		Standard string `json:"standard"`
		Clause   string `json:"clause"`
		Page     int    `json:"page"`
	}
	out := struct {
		Answer    string     `json:"answer"`
		Citations []citation `json:"citations"`
	}{Answer: answer.Text, Citations: make([]citation, 0, len(answer.Citations))}
	for _, c := range answer.Citations {
		out.Citations = append(out.Citations, citation{c.Standard, c.Clause, c.Page})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printCitations lists citation chips, marking the ones that match no loaded document.
func printCitations(cmd *cobra.Command, citations []domain.Citation) {
	if len(citations) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, c := range citations {
		marker := ""
		if resolverService != nil {
			if _, err := resolverService.Resolve(commandContext(cmd), c.Standard, c.Page, c.Clause); err != nil {
				marker = " (not loaded)"
			}
		}
		cmd.Printf("  [%d] %s%s\n", i+1, c.String(), marker)
	}
}
