// Package documents provides the loaded standards view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clauselab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clauselab/internal/connectors/filesystem"
	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

var errNoDocumentService = errors.New("document service not available")

// View is the standards list view. Standards are added by typing the path
// of a PDF or of a folder of PDFs.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	list    *list.DocumentList
	path    *input.PromptInput
	adding  bool
	notices []string

	width   int
	height  int
	ready   bool
	err     error
	loading bool
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	path := input.NewPromptInput(s, "Path", "/path/to/standard.pdf or folder")
	path.Blur()

	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		list:            list.NewDocumentList(s),
		path:            path,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current document set.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadDocuments()
}

// loadDocuments returns a command that lists the loaded standards.
func (v *View) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: errNoDocumentService}
		}
		docs, err := v.documentService.List(v.ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.handleAddKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.list.SetDocuments(msg.Documents)
			v.err = nil
		}
		return v, nil

	case messages.DocumentsUploaded:
		v.loading = false
		v.notices = uploadNotices(msg)
		return v, v.loadDocuments()

	case messages.DocumentIngested:
		if msg.Err != nil {
			v.notices = []string{fmt.Sprintf("Skipped %s: %v", msg.Filename, msg.Err)}
		} else {
			v.notices = []string{"Watch folder loaded " + msg.Filename}
		}
		return v, v.loadDocuments()

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "down", "j":
		v.list, _ = v.list.Update(msg)
	case "enter":
		if doc := v.list.SelectedDocument(); doc != nil {
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: doc}
			}
		}
	case "a":
		v.adding = true
		v.path.Reset()
		return v, v.path.Focus()
	case "d":
		if doc := v.list.SelectedDocument(); doc != nil {
			return v, v.removeDocument(doc.ID)
		}
	case "r":
		v.loading = true
		return v, v.loadDocuments()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// handleAddKeyMsg handles key presses while typing a path.
func (v *View) handleAddKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // only enter and esc leave the input
	switch msg.Type {
	case tea.KeyEsc:
		v.adding = false
		v.path.Blur()
		return v, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(v.path.Value())
		v.adding = false
		v.path.Blur()
		if path == "" {
			return v, nil
		}
		v.loading = true
		return v, v.uploadPath(path)
	}
	var cmd tea.Cmd
	v.path, cmd = v.path.Update(msg)
	return v, cmd
}

// uploadPath returns a command that ingests a PDF or every PDF in a folder.
func (v *View) uploadPath(raw string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsUploaded{Err: errNoDocumentService}
		}
		uploads, skipped, err := collectUploads(v.ctx, filesystem.ResolvePath(raw))
		if err != nil {
			return messages.DocumentsUploaded{Err: err}
		}
		results := v.documentService.Upload(v.ctx, uploads)
		return messages.DocumentsUploaded{Results: append(skipped, results...)}
	}
}

// collectUploads reads the file at path, or scans it when it is a folder.
// Unreadable files come back as failed results rather than an error.
func collectUploads(ctx context.Context, path string) ([]driving.Upload, []driving.UploadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if info.IsDir() {
		connector := filesystem.New(path)
		defer func() { _ = connector.Close() }()
		uploads, errs := connector.Scan(ctx)
		skipped := make([]driving.UploadResult, 0, len(errs))
		for _, e := range errs {
			skipped = append(skipped, driving.UploadResult{Filename: filepath.Base(path), Err: e})
		}
		return uploads, skipped, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []driving.UploadResult{{Filename: filepath.Base(path), Err: err}}, nil
	}
	return []driving.Upload{{Filename: filepath.Base(path), Data: data}}, nil, nil
}

// removeDocument returns a command that removes a standard from the set.
func (v *View) removeDocument(id string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentRemoved{DocumentID: id, Err: errNoDocumentService}
		}
		return messages.DocumentRemoved{DocumentID: id, Err: v.documentService.Remove(v.ctx, id)}
	}
}

// uploadNotices summarises an upload, one line per file.
func uploadNotices(msg messages.DocumentsUploaded) []string {
	if msg.Err != nil {
		return []string{"Upload failed: " + msg.Err.Error()}
	}
	if len(msg.Results) == 0 {
		return []string{"No PDFs found"}
	}
	notices := make([]string, 0, len(msg.Results))
	for _, res := range msg.Results {
		if res.Err != nil {
			notices = append(notices, fmt.Sprintf("Skipped %s: %v", res.Filename, res.Err))
			continue
		}
		notices = append(notices, fmt.Sprintf("Loaded %s (%d pages)", res.Document.OriginalFilename, res.Document.PageCount))
	}
	return notices
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Standards (%d)", v.list.Count())))
	b.WriteString("\n\n")

	if v.adding {
		b.WriteString(v.path.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] load  [esc] cancel"))
		return b.String()
	}

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading standards..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	for _, n := range v.notices {
		style := v.styles.Success
		if strings.HasPrefix(n, "Skipped") || strings.HasPrefix(n, "Upload failed") {
			style = v.styles.Warning
		}
		b.WriteString(style.Render(n))
		b.WriteString("\n")
	}
	if len(v.notices) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(v.list.View())
	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] content  [a] add  [d] remove  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.path.SetWidth(width)
	v.list.SetDimensions(width, height-8)
}

// Documents returns the listed standards.
func (v *View) Documents() []*domain.Document {
	return v.list.Documents()
}

// SelectedDocument returns the standard under the cursor.
func (v *View) SelectedDocument() *domain.Document {
	return v.list.SelectedDocument()
}

// Adding reports whether the path input is open.
func (v *View) Adding() bool {
	return v.adding
}

// Notices returns the outcome lines of the last upload.
func (v *View) Notices() []string {
	return v.notices
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
