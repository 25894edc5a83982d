package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// defaultExportFilename matches the export service default.
const defaultExportFilename = "flashcards.pdf"

var (
	flashcardSelect []string
	flashcardExport string
	flashcardJSON   bool
)

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Generate flashcards from the loaded standards",
	Long: `Generates flashcards for each selected document and prints them in a
shuffled order. With --export the cards are also written as printable A4
duplex sheets, six cards per sheet pair.`,
	Args: cobra.NoArgs,
	RunE: runFlashcards,
}

func init() {
	flashcardsCmd.Flags().StringSliceVarP(&flashcardSelect, "select", "s", nil,
		"document ID or name to include (repeatable, default all)")
	flashcardsCmd.Flags().StringVarP(&flashcardExport, "export", "e", "", "write printable sheets to this PDF")
	flashcardsCmd.Flags().Lookup("export").NoOptDefVal = defaultExportFilename
	flashcardsCmd.Flags().BoolVar(&flashcardJSON, "json", false, "output cards as JSON")
	rootCmd.AddCommand(flashcardsCmd)
}

func runFlashcards(cmd *cobra.Command, _ []string) error {
	if err := requireGeneration(); err != nil {
		return err
	}
	if newFlashcards == nil {
		return errors.New("flashcard sessions not configured")
	}

	ctx := commandContext(cmd)
	session := newFlashcards()
	if err := selectDocuments(ctx, session, flashcardSelect); err != nil {
		return err
	}

	ticket, err := session.Begin(ctx)
	if err != nil {
		return err
	}
	cards := generationService.FlashcardBatch(ctx, ticket.Documents, progressPrinter(cmd, session.Track(ticket.Epoch)))
	if err := session.Complete(ticket.Epoch, cards); err != nil {
		return generationFailed(err)
	}

	cards = session.Cards()
	if flashcardJSON {
		if err := outputFlashcardsJSON(cmd, cards); err != nil {
			return err
		}
	} else {
		for i, c := range cards {
			cmd.Printf("%d. Q: %s\n", i+1, c.Question)
			cmd.Printf("   A: %s\n", c.Answer)
			if cite, ok := c.FirstCitation(); ok {
				cmd.Printf("   %s\n", cite.String())
			}
			cmd.Println()
		}
		cmd.Printf("Total: %d flashcards\n", len(cards))
	}

	if flashcardExport == "" {
		return nil
	}
	f, err := createFile(flashcardExport)
	if err != nil {
		return err
	}
	if err := session.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	cmd.PrintErrf("Exported %d cards to %s\n", len(cards), flashcardExport)
	return nil
}

func outputFlashcardsJSON(cmd *cobra.Command, cards []domain.Flashcard) error {
	type card struct {
		ID        string   `json:"id"`
		Question  string   `json:"question"`
		Answer    string   `json:"answer"`
		Citations []string `json:"citations"`
	}
	out := make([]card, 0, len(cards))
	for _, c := range cards {
		cites := make([]string, 0, len(c.Citations))
		for _, cite := range c.Citations {
			cites = append(cites, cite.String())
		}
		out = append(out, card{ID: c.ID, Question: c.Question, Answer: c.Answer, Citations: cites})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flashcards: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
