package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

func testCards() []domain.Flashcard {
	return []domain.Flashcard{
		{
			ID:        "card-1",
			Question:  "Who leads the QMS?",
			Answer:    "Top management",
			Citations: []domain.Citation{{Standard: "ISO 9001.pdf", Clause: "5.1", Page: 2}},
		},
		{ID: "card-2", Question: "What is planned?", Answer: "Actions for risks"},
	}
}

func TestFlashcardsCmd_PrintsCards(t *testing.T) {
	setupServices(t, &mockGeneration{cards: testCards()}, testDocuments()...)

	out, err := execute(t, "", "flashcards")

	require.NoError(t, err)
	assert.Contains(t, out, "1. Q: Who leads the QMS?")
	assert.Contains(t, out, "   A: Top management")
	assert.Contains(t, out, "ISO 9001.pdf - Cl 5.1 (Pg 2)")
	assert.Contains(t, out, "Generating... 2/2")
	assert.Contains(t, out, "Total: 2 flashcards")
}

func TestFlashcardsCmd_JSON(t *testing.T) {
	setupServices(t, &mockGeneration{cards: testCards()[:1]}, testDocuments()...)

	out, err := execute(t, "", "flashcards", "--json", "--select", "doc-1")
	require.NoError(t, err)

	// Progress is interleaved on the same buffer; the JSON starts at '['
	start := 0
	for i, r := range out {
		if r == '[' {
			start = i
			break
		}
	}
	var cards []struct {
		ID        string   `json:"id"`
		Citations []string `json:"citations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "card-1", cards[0].ID)
	assert.Equal(t, []string{"ISO 9001.pdf - Cl 5.1 (Pg 2)"}, cards[0].Citations)
}

func TestFlashcardsCmd_Export(t *testing.T) {
	setupServices(t, &mockGeneration{cards: testCards()}, testDocuments()...)
	path := filepath.Join(t.TempDir(), "cards.pdf")

	out, err := execute(t, "", "flashcards", "--export="+path)

	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 cards to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestFlashcardsCmd_EmptyBatch(t *testing.T) {
	setupServices(t, &mockGeneration{}, testDocuments()...)

	_, err := execute(t, "", "flashcards")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned nothing usable")
}

func TestFlashcardsCmd_NoDocuments(t *testing.T) {
	setupServices(t, &mockGeneration{cards: testCards()})

	_, err := execute(t, "", "flashcards")

	assert.ErrorIs(t, err, errNoDocuments)
}

func TestFlashcardsCmd_UnknownSelection(t *testing.T) {
	setupServices(t, &mockGeneration{cards: testCards()}, testDocuments()...)

	_, err := execute(t, "", "flashcards", "--select", "BS 5950")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlashcardsCmd_NoModel(t *testing.T) {
	setupServices(t, &mockGeneration{unavailable: true}, testDocuments()...)

	_, err := execute(t, "", "flashcards")

	assert.ErrorIs(t, err, errNoModel)
}
