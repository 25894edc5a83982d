package pdf

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/core/domain"
)

// buildPDF writes an uncompressed A4 document with one line of text per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		if text != "" {
			doc.Text(20, 30, text)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	engine := New()
	require.NotNil(t, engine)
	assert.IsType(t, &Engine{}, engine)
}

func TestEngine_Parse_PageCount(t *testing.T) {
	data := buildPDF(t, "Track geometry", "Ballast profile", "Drainage")

	handle, err := New().Parse(context.Background(), data)
	require.NoError(t, err)
	defer handle.Close()

	assert.Equal(t, 3, handle.PageCount())
}

func TestEngine_Parse_DoesNotRetainInput(t *testing.T) {
	data := buildPDF(t, "Sleeper spacing")
	original := append([]byte(nil), data...)

	handle, err := New().Parse(context.Background(), data)
	require.NoError(t, err)
	defer handle.Close()

	for i := range data {
		data[i] = 0
	}

	fragments, err := handle.PageText(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(fragments, " "), "Sleeper spacing")

	handle2, err := New().Parse(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, 1, handle2.PageCount())
}

func TestEngine_Parse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("hello, this is plain text")},
		{name: "truncated header", data: []byte("%PDF-1.4\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle, err := New().Parse(context.Background(), tt.data)
			assert.ErrorIs(t, err, domain.ErrDocumentParse)
			assert.Nil(t, handle)
		})
	}
}

func TestEngine_Parse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Parse(ctx, buildPDF(t, "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandle_PageText(t *testing.T) {
	data := buildPDF(t, "First page text", "Second page text")

	handle, err := New().Parse(context.Background(), data)
	require.NoError(t, err)
	defer handle.Close()

	first, err := handle.PageText(context.Background(), 1)
	require.NoError(t, err)
	second, err := handle.PageText(context.Background(), 2)
	require.NoError(t, err)

	assert.Contains(t, strings.Join(first, " "), "First page text")
	assert.Contains(t, strings.Join(second, " "), "Second page text")
	assert.NotContains(t, strings.Join(first, " "), "Second")
}

func TestHandle_PageText_BlankPage(t *testing.T) {
	handle, err := New().Parse(context.Background(), buildPDF(t, ""))
	require.NoError(t, err)
	defer handle.Close()

	fragments, err := handle.PageText(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestHandle_PageText_OutOfRange(t *testing.T) {
	handle, err := New().Parse(context.Background(), buildPDF(t, "only"))
	require.NoError(t, err)
	defer handle.Close()

	for _, page := range []int{0, -1, 2} {
		_, err := handle.PageText(context.Background(), page)
		assert.ErrorIs(t, err, domain.ErrPageOutOfRange, "page %d", page)
	}
}

func TestHandle_PageText_AfterClose(t *testing.T) {
	handle, err := New().Parse(context.Background(), buildPDF(t, "closed"))
	require.NoError(t, err)
	require.NoError(t, handle.Close())

	_, err = handle.PageText(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandle_RenderPage(t *testing.T) {
	handle, err := New().Parse(context.Background(), buildPDF(t, "Rendered"))
	require.NoError(t, err)
	defer handle.Close()

	tests := []struct {
		name   string
		scale  float64
		width  int
		height int
	}{
		{name: "unit scale", scale: 1, width: 595, height: 841},
		{name: "half scale", scale: 0.5, width: 297, height: 420},
		{name: "double scale", scale: 2, width: 1190, height: 1683},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := handle.RenderPage(context.Background(), 1, tt.scale)
			require.NoError(t, err)
			bounds := img.Bounds()
			assert.InDelta(t, tt.width, bounds.Dx(), 1)
			assert.InDelta(t, tt.height, bounds.Dy(), 1)
		})
	}
}

func TestHandle_RenderPage_DrawsText(t *testing.T) {
	handle, err := New().Parse(context.Background(), buildPDF(t, "Ink"))
	require.NoError(t, err)
	defer handle.Close()

	img, err := handle.RenderPage(context.Background(), 1, 1)
	require.NoError(t, err)

	dark := false
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y && !dark; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r < 0x8000 {
				dark = true
				break
			}
		}
	}
	assert.True(t, dark, "expected glyphs on the canvas")
}

func TestHandle_RenderPage_InvalidScale(t *testing.T) {
	handle, err := New().Parse(context.Background(), buildPDF(t, "x"))
	require.NoError(t, err)
	defer handle.Close()

	_, err = handle.RenderPage(context.Background(), 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = handle.RenderPage(context.Background(), 5, 1)
	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
}
