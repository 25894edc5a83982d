// Package viewer provides the cited page view for the TUI.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

var errNoViewerService = errors.New("viewer service not available")

// View shows the text of one page of a loaded standard. Zoom narrows or
// widens the text column.
type View struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	viewerService driving.ViewerService
	ctx           context.Context

	request  domain.ViewerRequest
	page     *domain.PageView
	lines    []string
	scroll   int
	returnTo messages.ViewType
	loading  bool
	notice   string

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new viewer.
func NewView(s *styles.Styles, km *keymap.KeyMap, viewerService driving.ViewerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:        s,
		keymap:        km,
		viewerService: viewerService,
		ctx:           context.Background(),
		returnTo:      messages.ViewMenu,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open resolves citation and loads its page. ret is the view shown when the
// viewer closes.
func (v *View) Open(citation domain.Citation, ret messages.ViewType) tea.Cmd {
	v.returnTo = ret
	v.page = nil
	v.lines = nil
	v.scroll = 0
	v.err = nil
	v.notice = ""
	v.loading = true

	if v.viewerService == nil {
		v.loading = false
		v.err = errNoViewerService
		return nil
	}
	req, ok := v.viewerService.Open(v.ctx, citation)
	if !ok {
		v.loading = false
		v.err = fmt.Errorf("%w: %s is not loaded", domain.ErrResolutionMiss, citation.Standard)
		return nil
	}
	v.request = req
	return v.load()
}

// load fetches the page for the current request.
func (v *View) load() tea.Cmd {
	req := v.request
	return func() tea.Msg {
		page, err := v.viewerService.Page(v.ctx, req)
		return messages.PageLoaded{Page: page, Err: err}
	}
}

// Update handles messages for the viewer.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PageLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.page = msg.Page
		// The service clamps page and scale; keep the request in step
		v.request.Page = msg.Page.Page
		v.request.Scale = msg.Page.Scale
		v.scroll = 0
		v.wrap()
		return v, nil

	case messages.PageRendered:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Saved " + msg.Path
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		ret := v.returnTo
		return v, func() tea.Msg {
			return messages.ViewChanged{View: ret}
		}
	case v.page == nil || v.loading:
		return v, nil
	case keymap.Matches(key, v.keymap.ZoomIn):
		return v, v.zoom(domain.ScaleStep)
	case keymap.Matches(key, v.keymap.ZoomOut):
		return v, v.zoom(-domain.ScaleStep)
	case keymap.Matches(key, v.keymap.Next):
		return v, v.turn(1)
	case keymap.Matches(key, v.keymap.Prev):
		return v, v.turn(-1)
	case keymap.Matches(key, v.keymap.Up):
		if v.scroll > 0 {
			v.scroll--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.scroll < v.maxScroll() {
			v.scroll++
		}
	case key == "w":
		return v, v.save()
	}
	return v, nil
}

// zoom changes the scale within bounds. Nothing is reloaded at a bound.
func (v *View) zoom(delta float64) tea.Cmd {
	scale := domain.ClampScale(v.request.Scale + delta)
	if scale == v.request.Scale {
		return nil
	}
	v.request.Scale = scale
	v.loading = true
	return v.load()
}

// turn moves by delta pages within the document.
func (v *View) turn(delta int) tea.Cmd {
	page := domain.ClampPage(v.request.Page+delta, v.page.PageCount)
	if page == v.request.Page {
		return nil
	}
	v.request.Page = page
	v.loading = true
	return v.load()
}

// save writes the rendered page as a PNG in the working directory.
func (v *View) save() tea.Cmd {
	req := v.request
	base := strings.TrimSuffix(v.page.Document.OriginalFilename, filepath.Ext(v.page.Document.OriginalFilename))
	if base == "" {
		base = "page"
	}
	path := fmt.Sprintf("%s-p%d.png", base, req.Page)
	return func() tea.Msg {
		data, err := v.viewerService.Render(v.ctx, req)
		if err != nil {
			return messages.PageRendered{Path: path, Err: err}
		}
		return messages.PageRendered{Path: path, Err: os.WriteFile(path, data, 0o644)}
	}
}

// wrap breaks the page text into lines. Higher zoom gives a narrower column.
func (v *View) wrap() {
	v.lines = nil
	if v.page == nil {
		return
	}
	scale := v.page.Scale
	if scale <= 0 {
		scale = domain.DefaultScale
	}
	width := max(20, int(float64(v.width-4)/scale))

	var line strings.Builder
	for _, word := range strings.Fields(v.page.Text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			v.lines = append(v.lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		v.lines = append(v.lines, line.String())
	}
}

func (v *View) visibleLines() int {
	return max(1, v.height-8)
}

func (v *View) maxScroll() int {
	return max(0, len(v.lines)-v.visibleLines())
}

// View renders the viewer.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	if v.page == nil {
		b.WriteString(v.styles.Title.Render("Viewer"))
		b.WriteString("\n\n")
		switch {
		case v.err != nil:
			b.WriteString(v.styles.Error.Render(v.err.Error()))
		case v.loading:
			b.WriteString(v.styles.Muted.Render("Loading page..."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}

	title := v.page.Document.DisplayName
	if title == "" {
		title = v.page.Document.OriginalFilename
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	header := fmt.Sprintf("Page %d of %d  Zoom %d%%", v.page.Page, v.page.PageCount, int(v.page.Scale*100+0.5))
	if v.page.Clause != "" {
		header = fmt.Sprintf("Clause %s  %s", v.page.Clause, header)
	}
	b.WriteString(v.styles.Subtitle.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No text on this page)"))
		b.WriteString("\n")
	}
	end := min(len(v.lines), v.scroll+v.visibleLines())
	for i := v.scroll; i < end; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[←/→] page  [+/-] zoom  [↑/↓] scroll  [w] save image  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrap()
}

// Request returns the request for the page on screen.
func (v *View) Request() domain.ViewerRequest {
	return v.request
}

// Page returns the page on screen, if any.
func (v *View) Page() *domain.PageView {
	return v.page
}

// ReturnTo returns the view shown when the viewer closes.
func (v *View) ReturnTo() messages.ViewType {
	return v.returnTo
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
