package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbind/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	files     fs.FS
	extension string
	globals   pongo2.Context
}

// WithFS loads views from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithExtension overrides the extension appended to view names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithGlobals seeds values and helper functions visible to every view.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		for name, value := range globals {
			if name = strings.TrimSpace(name); name != "" {
				cfg.globals[name] = value
			}
		}
	}
}

// Engine renders pongo2 views. The vanilla host uses it for its fallback
// error view.
type Engine struct {
	set       *pongo2.TemplateSet
	extension string

	mu    sync.RWMutex
	views map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Without WithFS only RenderString is usable.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".html", globals: pongo2.Context{}}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	files := cfg.files
	if files == nil {
		files = emptyFS{}
	}
	set := pongo2.NewSet("formbind-views", pongo2.NewFSLoader(files))
	set.Globals.Update(cfg.globals)

	return &Engine{
		set:       set,
		extension: cfg.extension,
		views:     make(map[string]*pongo2.Template),
	}, nil
}

// RenderTemplate renders the named view, appending the configured extension
// when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, e.extension) {
		name += e.extension
	}
	view, err := e.view(name)
	if err != nil {
		return "", err
	}
	return execute(view, name, data, out)
}

// RenderString renders inline view content.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	view, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse view string: %w", err)
	}
	return execute(view, "<string>", data, out)
}

func (e *Engine) view(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	view, ok := e.views[name]
	e.mu.RUnlock()
	if ok {
		return view, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if view, ok := e.views[name]; ok {
		return view, nil
	}
	view, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load view %q: %w", name, err)
	}
	e.views[name] = view
	return view, nil
}

func execute(view *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx, err := contextOf(data)
	if err != nil {
		return "", err
	}
	rendered, err := view.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute view %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// contextOf accepts map-shaped view data. Nested values are handed to pongo2
// untouched, so struct fields stay reachable by their Go names.
func contextOf(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	case map[string]string:
		in = make(map[string]any, len(v))
		for key, value := range v {
			in[key] = value
		}
	default:
		return nil, fmt.Errorf("gotemplate: view data must be a map, got %T", data)
	}

	ctx := make(pongo2.Context, len(in))
	for key, value := range in {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	return ctx, nil
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
