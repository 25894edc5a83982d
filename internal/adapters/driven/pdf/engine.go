// Package pdf implements the PDF engine on top of github.com/ledongthuc/pdf
// for text extraction and github.com/fogleman/gg for page rasterisation.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	lpdf "github.com/ledongthuc/pdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
)

// A4 in points, used when a page declares no MediaBox.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0

	// defaultFontSize is used for glyphs that carry no usable size.
	defaultFontSize = 10.0

	// maxTreeDepth bounds the walk up the page tree.
	maxTreeDepth = 32
)

// Ensure Engine implements the interface.
var _ driven.PDFEngine = (*Engine)(nil)

// Engine parses PDF bytes.
type Engine struct {
	fontOnce sync.Once
	fontErr  error
	font     *truetype.Font
}

// New creates a PDF engine.
func New() *Engine {
	return &Engine{}
}

// Parse opens a PDF from an internal copy of data.
func (e *Engine) Parse(ctx context.Context, data []byte) (driven.PDFHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrDocumentParse)
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	reader, err := openReader(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentParse, err)
	}

	pages, err := safeNumPage(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentParse, err)
	}

	return &Handle{engine: e, reader: reader, pages: pages}, nil
}

// face returns a Go Regular font face at the given size.
func (e *Engine) face(size float64) (font.Face, error) {
	e.fontOnce.Do(func() {
		e.font, e.fontErr = truetype.Parse(goregular.TTF)
	})
	if e.fontErr != nil {
		return nil, e.fontErr
	}
	return truetype.NewFace(e.font, &truetype.Options{Size: size}), nil
}

// openReader wraps lpdf.NewReader, which panics on some malformed inputs.
func openReader(buf []byte) (reader *lpdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return lpdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
}

func safeNumPage(reader *lpdf.Reader) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("reading page tree: %v", r)
		}
	}()
	return reader.NumPage(), nil
}

// Handle is a parsed PDF. The underlying reader is not safe for concurrent
// use, so every access is serialised.
type Handle struct {
	engine *Engine

	mu     sync.Mutex
	reader *lpdf.Reader
	pages  int
}

// PageCount returns the number of pages.
func (h *Handle) PageCount() int {
	return h.pages
}

// PageText returns one fragment per text row, top to bottom.
func (h *Handle) PageText(ctx context.Context, page int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.page(page)
	if err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, nil
	}

	rows, err := textRows(p)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", domain.ErrDocumentParse, page, err)
	}

	fragments := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			fragments = append(fragments, s)
		}
	}
	return fragments, nil
}

// RenderPage draws the page's text layer on a white canvas sized to the
// page's MediaBox times scale.
func (h *Handle) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive", domain.ErrInvalidInput)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.page(page)
	if err != nil {
		return nil, err
	}

	width, height := mediaBox(p.V)
	w := max(int(width*scale), 1)
	hgt := max(int(height*scale), 1)

	dc := gg.NewContext(w, hgt)
	dc.SetColor(color.White)
	dc.Clear()

	if p.V.IsNull() {
		return dc.Image(), nil
	}

	glyphs, err := pageGlyphs(p)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", domain.ErrDocumentParse, page, err)
	}

	dc.SetColor(color.Black)
	faces := make(map[float64]font.Face)
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		size *= scale
		face, ok := faces[size]
		if !ok {
			face, err = h.engine.face(size)
			if err != nil {
				return nil, fmt.Errorf("loading font: %w", err)
			}
			faces[size] = face
		}
		dc.SetFontFace(face)
		dc.DrawString(g.S, g.X*scale, (height-g.Y)*scale)
	}

	return dc.Image(), nil
}

// Close releases the handle.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reader = nil
	return nil
}

func (h *Handle) page(page int) (p lpdf.Page, err error) {
	if h.reader == nil {
		return lpdf.Page{}, fmt.Errorf("%w: handle closed", domain.ErrInvalidInput)
	}
	if page < 1 || page > h.pages {
		return lpdf.Page{}, fmt.Errorf("%w: page %d of %d", domain.ErrPageOutOfRange, page, h.pages)
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = lpdf.Page{}, fmt.Errorf("%w: page %d: %v", domain.ErrDocumentParse, page, r)
		}
	}()
	return h.reader.Page(page), nil
}

func textRows(p lpdf.Page) (rows lpdf.Rows, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("extracting text: %v", r)
		}
	}()
	return p.GetTextByRow()
}

func pageGlyphs(p lpdf.Page) (glyphs []lpdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			glyphs, err = nil, fmt.Errorf("reading content: %v", r)
		}
	}()
	return p.Content().Text, nil
}

// mediaBox returns the page size in points, inheriting from parent page-tree
// nodes when the page itself declares none.
func mediaBox(v lpdf.Value) (width, height float64) {
	node := v
	for depth := 0; depth < maxTreeDepth && !node.IsNull(); depth++ {
		box := node.Key("MediaBox")
		node = node.Key("Parent")
		if box.Kind() != lpdf.Array || box.Len() < 4 {
			continue
		}
		width = box.Index(2).Float64() - box.Index(0).Float64()
		height = box.Index(3).Float64() - box.Index(1).Float64()
		if width > 0 && height > 0 {
			return width, height
		}
	}
	return defaultPageWidth, defaultPageHeight
}
