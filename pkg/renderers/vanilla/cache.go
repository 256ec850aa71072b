package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formbind/internal/ctxlog"
)

// ErrNoTemplates is returned when a named template is rendered without a
// template source.
var ErrNoTemplates = errors.New("no template source configured")

// templateCache holds parsed templates keyed by name. Renders clone the
// cached tree, so cached nodes are never mutated.
type templateCache struct {
	mu     sync.RWMutex
	fsys   fs.FS
	parsed map[string]*html.Node
}

func newTemplateCache(fsys fs.FS) *templateCache {
	return &templateCache{fsys: fsys, parsed: make(map[string]*html.Node)}
}

func (c *templateCache) load(name string) (*html.Node, error) {
	if c.fsys == nil {
		return nil, ErrNoTemplates
	}

	c.mu.RLock()
	root, ok := c.parsed[name]
	c.mu.RUnlock()
	if ok {
		return root, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if root, ok := c.parsed[name]; ok {
		return root, nil
	}
	src, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", name, err)
	}
	root, err = parseTemplate(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	c.parsed[name] = root
	return root, nil
}

func (c *templateCache) reset() {
	c.mu.Lock()
	c.parsed = make(map[string]*html.Node)
	c.mu.Unlock()
}

// Invalidate drops every parsed template.
func (r *Renderer) Invalidate() {
	r.templates.reset()
}

// Watch drops parsed templates whenever a file below dir changes. It blocks
// until ctx is done.
func (r *Renderer) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("vanilla renderer: watch templates: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("vanilla renderer: watch %s: %w", dir, err)
	}

	logger := ctxlog.FromContext(r.withLogger(ctx))
	const changes = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&changes == 0 {
				continue
			}
			r.templates.reset()
			logger.Debug("template cache cleared", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("template watcher error", "error", err)
		}
	}
}
