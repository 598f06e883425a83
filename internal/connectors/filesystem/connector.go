// Package filesystem discovers benchmark documents on local disk and watches
// directories for new or rewritten ones.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// DefaultSettle is how long a file must go without writes before it is emitted.
const DefaultSettle = 500 * time.Millisecond

// ErrClosed is returned when watching through a closed connector.
var ErrClosed = errors.New("connector closed")

// Candidate is a file that one of the loaders can read.
type Candidate struct {
	Path   string
	Format domain.DocumentFormat
}

// Connector scans and watches a root path for loadable documents.
type Connector struct {
	rootPath string
	settle   time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithSettle overrides the write settle delay.
func WithSettle(d time.Duration) Option {
	return func(c *Connector) {
		c.settle = d
	}
}

// New creates a connector rooted at rootPath, which may be a file or a
// directory given as a path or file:// URI.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath: filepath.Clean(ResolvePath(rootPath)),
		settle:   DefaultSettle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.settle <= 0 {
		c.settle = DefaultSettle
	}
	return c
}

// RootPath returns the scanned path.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Scan returns every loadable file under the root in lexical order.
// Hidden files and directories are skipped. A root that is itself a file is
// returned as the only candidate, or rejected if no loader handles it.
func (c *Connector) Scan(ctx context.Context) ([]Candidate, error) {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, c.rootPath)
		}
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		format, err := domain.FormatFromPath(c.rootPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.rootPath, err)
		}
		return []Candidate{{Path: c.rootPath, Format: format}}, nil
	}

	var candidates []Candidate
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if format, err := domain.FormatFromPath(path); err == nil {
			candidates = append(candidates, Candidate{Path: path, Format: format})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		return strings.Compare(a.Path, b.Path)
	})
	logger.Debug("Scan of %s found %d documents", c.rootPath, len(candidates))
	return candidates, nil
}

// Watch emits a candidate each time a loadable file is created or rewritten
// under the root directory, once its writes have settled. The channel closes
// when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	out := make(chan Candidate)
	go c.run(ctx, watcher, out)
	return out, nil
}

// run drains watcher events, holding each path until it settles.
func (c *Connector) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Candidate) {
	defer close(out)
	defer watcher.Close()

	pending := make(map[string]Candidate)
	ticker := time.NewTicker(c.settle / 2)
	defer ticker.Stop()
	lastSeen := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && c.isWatchableDir(event.Name) {
				if err := c.addTree(watcher, event.Name); err != nil {
					logger.Warn("Cannot watch %s: %v", event.Name, err)
				}
				continue
			}
			if cand := c.handleFsEvent(event); cand != nil {
				pending[cand.Path] = *cand
				lastSeen[cand.Path] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, cand := range pending {
				if now.Sub(lastSeen[path]) < c.settle {
					continue
				}
				delete(pending, path)
				delete(lastSeen, path)
				select {
				case out <- cand:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent converts a file event into a load candidate.
// Returns nil for events that should not trigger a load.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Candidate {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil || isHidden(rel) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}

	format, err := domain.FormatFromPath(event.Name)
	if err != nil {
		return nil
	}

	return &Candidate{Path: event.Name, Format: format}
}

func (c *Connector) isWatchableDir(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || isHidden(rel) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops any active watch.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
