// Package filesystem watches a local folder and turns PDFs dropped into it
// into uploads for the document set.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
	"github.com/custodia-labs/clauselab/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is read.
// Copies into the folder usually arrive as a burst of write events.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned when a closed connector is used.
var ErrClosed = errors.New("connector closed")

// Connector watches rootPath for PDF files.
type Connector struct {
	rootPath string
	debounce time.Duration
	log      *zap.SugaredLogger

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector for the given folder.
func New(rootPath string) *Connector {
	return &Connector{
		rootPath: rootPath,
		debounce: DefaultDebounce,
		log:      logger.Named("watch"),
	}
}

// SetDebounce overrides the quiet period before a changed file is read.
func (c *Connector) SetDebounce(d time.Duration) {
	c.debounce = d
}

// RootPath returns the watched folder.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root path is an accessible directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// Scan reads every visible PDF directly inside the root folder, sorted by name.
// Files that cannot be read are reported individually.
func (c *Connector) Scan(ctx context.Context) ([]driving.Upload, []error) {
	if c.isClosed() {
		return nil, []error{ErrClosed}
	}
	if err := c.Validate(); err != nil {
		return nil, []error{err}
	}

	entries, err := os.ReadDir(c.rootPath)
	if err != nil {
		return nil, []error{fmt.Errorf("reading %s: %w", c.rootPath, err)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var uploads []driving.Upload
	var errs []error
	for _, entry := range entries {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if entry.IsDir() || isHidden(entry.Name()) || !IsPDF(entry.Name()) {
			continue
		}
		upload, err := readUpload(filepath.Join(c.rootPath, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		uploads = append(uploads, upload)
	}
	return uploads, errs
}

// Watch emits an upload each time a PDF in the root folder is created or
// written and then left alone for the debounce period. The channel closes
// when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan driving.Upload, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.mu.Unlock()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", c.rootPath, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = watcher.Close()
		return nil, ErrClosed
	}
	c.watcher = watcher
	c.mu.Unlock()

	out := make(chan driving.Upload)
	go c.loop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- driving.Upload) {
	defer close(out)
	defer func() { _ = watcher.Close() }()

	quiet := newDebouncer(c.debounce)
	defer quiet.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			path, ok := c.handleFsEvent(event)
			if !ok {
				continue
			}
			quiet.touch(path)

		case f := <-quiet.ready:
			if !quiet.accept(f) {
				continue
			}
			upload, err := readUpload(f.path)
			if err != nil {
				c.log.Warnw("skipping file", "path", f.path, "error", err)
				continue
			}
			select {
			case out <- upload:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.log.Warnw("watcher error", "error", err)
		}
	}
}

// handleFsEvent returns the path to ingest for an event, if any. Only
// creates and writes of visible PDF files inside the root count.
func (c *Connector) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if isHidden(rel) || !IsPDF(event.Name) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}

	c.log.Debugw("pdf changed", "path", event.Name, "op", event.Op.String())
	return event.Name, true
}

// Close stops any active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func readUpload(path string) (driving.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return driving.Upload{}, fmt.Errorf("%s disappeared before it could be read: %w", path, err)
		}
		return driving.Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return driving.Upload{Filename: filepath.Base(path), Data: data}, nil
}
