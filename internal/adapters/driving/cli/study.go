package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// selectable is the part of a study session used to pick documents.
type selectable interface {
	Toggle(documentID string) error
	IsSelected(documentID string) bool
}

// selectDocuments selects the documents named by refs, or every loaded
// document when refs is empty.
func selectDocuments(ctx context.Context, session selectable, refs []string) error {
	if len(refs) == 0 {
		docs, err := loadedDocuments(ctx)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := session.Toggle(d.ID); err != nil {
				return err
			}
		}
		return nil
	}

	for _, ref := range refs {
		doc, err := findDocument(ctx, ref)
		if err != nil {
			return err
		}
		if session.IsSelected(doc.ID) {
			continue
		}
		if err := session.Toggle(doc.ID); err != nil {
			return err
		}
	}
	return nil
}

// progressPrinter writes "Generating... n/m" to stderr as calls settle.
func progressPrinter(cmd *cobra.Command, track driving.ProgressFunc) driving.ProgressFunc {
	return func(p domain.Progress) {
		track(p)
		cmd.PrintErrf("\rGenerating... %d/%d", p.Completed, p.Total)
		if p.Done() {
			cmd.PrintErrln()
		}
	}
}

func requireGeneration() error {
	if generationService == nil {
		return errNoGeneration
	}
	if !generationService.Available() {
		return errNoModel
	}
	return nil
}

func generationFailed(err error) error {
	if errors.Is(err, domain.ErrEmptyBatch) {
		return errors.New("the model returned nothing usable; try again or check the documents")
	}
	return fmt.Errorf("generation failed: %w", err)
}

func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}
