package services

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/logger"
)

func TestNormalizeStandardName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Track.pdf", "track"},
		{"  TRACK  ", "track"},
		{"track.PDF", "track"},
		{"Track.pdf  ", "track"},
		{"AS 1085.1", "as 1085.1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStandardName(tt.in))
		})
	}
}

func newResolverFixture(t *testing.T, docs ...*domain.Document) *CitationResolver {
	t.Helper()
	store := memory.NewDocumentStore()
	for _, d := range docs {
		require.NoError(t, store.Save(context.Background(), d))
	}
	return NewCitationResolver(store)
}

func TestCitationResolver_Resolve_Normalisation(t *testing.T) {
	r := newResolverFixture(t, testDocument("d1", "Track.pdf", ""))

	for _, ref := range []string{"Track.pdf", "TRACK", "track.PDF", " Track "} {
		t.Run(ref, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), ref, 4, "3.2")
			require.NoError(t, err)
			assert.Equal(t, "d1", res.Document.ID)
			assert.Equal(t, 4, res.Page)
			assert.Equal(t, "3.2", res.Clause)
		})
	}
}

func TestCitationResolver_Resolve_DisplayNameMatch(t *testing.T) {
	r := newResolverFixture(t, testDocument("d1", "Track (1).pdf", ""))

	res, err := r.Resolve(context.Background(), "Track", 1, "")

	require.NoError(t, err)
	assert.Equal(t, "d1", res.Document.ID)
}

func TestCitationResolver_Resolve_FirstInUploadOrder(t *testing.T) {
	r := newResolverFixture(t,
		testDocument("first", "Track (1).pdf", ""),
		testDocument("second", "Track.pdf", ""),
	)

	res, err := r.Resolve(context.Background(), "Track.pdf", 1, "")

	require.NoError(t, err)
	assert.Equal(t, "first", res.Document.ID)
}

func TestCitationResolver_Resolve_CoercesPage(t *testing.T) {
	r := newResolverFixture(t, testDocument("d1", "Track.pdf", ""))

	for _, page := range []int{0, -3} {
		res, err := r.Resolve(context.Background(), "Track", page, "")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Page)
	}
}

func TestCitationResolver_Resolve_MissLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	r := newResolverFixture(t, testDocument("d1", "Track.pdf", ""))

	res, err := r.Resolve(context.Background(), "Signalling", 2, "1.1")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrResolutionMiss)
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), "Signalling")
}

func TestCitationResolver_Resolve_EmptySet(t *testing.T) {
	r := newResolverFixture(t)
	_, err := r.Resolve(context.Background(), "Track", 1, "")
	assert.ErrorIs(t, err, domain.ErrResolutionMiss)
}
