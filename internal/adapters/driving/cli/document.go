package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect loaded documents",
	Long:  `List the documents loaded with --doc and print their page-tagged text.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id|name]",
	Short: "Print page-tagged document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

func init() {
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentContentCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		type row struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Filename string `json:"filename"`
			Pages    int    `json:"pages"`
			Chars    int    `json:"chars"`
		}
		rows := make([]row, 0, len(docs))
		for _, d := range docs {
			s := d.Summary()
			rows = append(rows, row{s.ID, s.DisplayName, s.OriginalFilename, s.PageCount, s.TextLength})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents loaded.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("  %s\n", d.ID)
		cmd.Printf("    Name:  %s\n", d.DisplayName)
		cmd.Printf("    File:  %s\n", d.OriginalFilename)
		cmd.Printf("    Pages: %d\n", d.PageCount)
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := findDocument(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(doc.PageTaggedText)
	return nil
}
