package vanilla

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/goliatone/go-formbind/internal/ctxlog"
	"github.com/goliatone/go-formbind/pkg/classification"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/formschema"
	"github.com/goliatone/go-formbind/pkg/handy"
	"github.com/goliatone/go-formbind/pkg/render"
	rendertemplate "github.com/goliatone/go-formbind/pkg/render/template"
	"github.com/goliatone/go-formbind/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbind/pkg/token"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	dispatcher       *directive.Dispatcher
	directiveOptions []directive.Option
	classes          classification.Provider
	evaluator        rendertemplate.ExpressionEvaluator
	templateRenderer rendertemplate.TemplateRenderer
	fallbackView     string
	funcs            map[string]any
	forms            *formschema.Registry
	location         *time.Location
	logger           *slog.Logger
}

// WithTemplatesFS loads templates from an fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithDispatcher injects a preconfigured dispatcher. WithDirectiveOptions is
// ignored when a dispatcher is supplied.
func WithDispatcher(d *directive.Dispatcher) Option {
	return func(cfg *config) {
		cfg.dispatcher = d
	}
}

// WithDirectiveOptions configures the dispatcher built by New.
func WithDirectiveOptions(options ...directive.Option) Option {
	return func(cfg *config) {
		cfg.directiveOptions = append(cfg.directiveOptions, options...)
	}
}

// WithClassifications sets the provider behind optionCls and the cls
// variable.
func WithClassifications(provider classification.Provider) Option {
	return func(cfg *config) {
		cfg.classes = provider
	}
}

// WithEvaluator replaces the pongo2 expression evaluator.
func WithEvaluator(evaluator rendertemplate.ExpressionEvaluator) Option {
	return func(cfg *config) {
		if evaluator != nil {
			cfg.evaluator = evaluator
		}
	}
}

// WithFallbackView renders the named view when a render fails. The error is
// still returned alongside the view output.
func WithFallbackView(name string) Option {
	return func(cfg *config) {
		cfg.fallbackView = strings.TrimSpace(name)
	}
}

// WithTemplateRenderer injects the engine that renders fallback views.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateFuncs exports helper functions to every render. Their names
// are reserved: registered data may not reuse them.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.funcs[strings.TrimSpace(name)] = fn
		}
	}
}

// WithFormSchemas shares a form schema registry, so explicit schemas
// registered by the application are used.
func WithFormSchemas(registry *formschema.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.forms = registry
		}
	}
}

// WithLocation sets the time zone used by the handy date helper.
func WithLocation(location *time.Location) Option {
	return func(cfg *config) {
		cfg.location = location
	}
}

// WithLogger sets the logger used when the render context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Renderer expands the custom directives of HTML templates and evaluates the
// resulting host directives.
type Renderer struct {
	templates  *templateCache
	dispatcher *directive.Dispatcher
	evaluator  rendertemplate.ExpressionEvaluator
	views      rendertemplate.TemplateRenderer
	fallback   string
	classes    classification.Provider
	funcs      map[string]any
	forms      *formschema.Registry
	location   *time.Location
	logger     *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	for name := range cfg.funcs {
		if name == "" || slices.Contains(directive.DefaultReservedNames, name) {
			return nil, fmt.Errorf("vanilla renderer: template func name %q is reserved", name)
		}
	}

	dispatcher := cfg.dispatcher
	if dispatcher == nil {
		var opts []directive.Option
		if cfg.classes != nil {
			opts = append(opts, directive.WithClassifications(cfg.classes))
		}
		if len(cfg.funcs) > 0 {
			names := sortedKeys(cfg.funcs)
			opts = append(opts, directive.WithReservedNamesHook(func() []string { return names }))
		}
		opts = append(opts, cfg.directiveOptions...)

		var err error
		dispatcher, err = directive.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure directives: %w", err)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		evaluator = gotemplate.NewEvaluator()
	}

	views := cfg.templateRenderer
	if views == nil && cfg.fallbackView != "" {
		files := cfg.templateFS
		if cfg.fallbackView == DefaultFallbackView || files == nil {
			files = ViewsFS()
		}
		engine, err := gotemplate.New(gotemplate.WithFS(files), gotemplate.WithExtension(".html"), gotemplate.WithGlobals(cfg.funcs))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure fallback views: %w", err)
		}
		views = engine
	}

	forms := cfg.forms
	if forms == nil {
		forms = formschema.NewRegistry()
	}
	location := cfg.location
	if location == nil {
		location = time.Local
	}

	return &Renderer{
		templates:  newTemplateCache(cfg.templateFS),
		dispatcher: dispatcher,
		evaluator:  evaluator,
		views:      views,
		fallback:   cfg.fallbackView,
		classes:    cfg.classes,
		funcs:      cfg.funcs,
		forms:      forms,
		location:   location,
		logger:     cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Dispatcher exposes the directive dispatcher.
func (r *Renderer) Dispatcher() *directive.Dispatcher {
	return r.dispatcher
}

// Render renders the named template.
func (r *Renderer) Render(ctx context.Context, name string, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = r.withLogger(ctx)

	root, err := r.templates.load(name)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	return r.execute(ctx, name, cloneNode(root), options)
}

// RenderString renders inline template content without caching it.
func (r *Renderer) RenderString(ctx context.Context, content string, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = r.withLogger(ctx)

	root, err := parseTemplate([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: parse template string: %w", err)
	}
	return r.execute(ctx, "", root, options)
}

// Lint reports custom directives the named template spells with the host
// prefix.
func (r *Renderer) Lint(name string) ([]directive.Diagnostic, error) {
	root, err := r.templates.load(name)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	return lintTree(r.dispatcher, root, name), nil
}

func (r *Renderer) execute(ctx context.Context, path string, root *html.Node, options render.RenderOptions) ([]byte, error) {
	vars, err := r.variables(options)
	if err != nil {
		return r.fail(ctx, path, err)
	}

	w := &walker{
		ctx:        ctx,
		dispatcher: r.dispatcher,
		evaluator:  r.evaluator,
		path:       path,
		scope: &directive.Scope{
			TemplatePath: path,
			Action:       options.Action,
			Stack:        directive.NewIterationStack(),
			Tokens:       options.Tokens,
		},
		hidden: token.SortedHiddenFields(options.HiddenFields),
	}
	if err := w.children(root, vars); err != nil {
		return r.fail(ctx, path, err)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("vanilla renderer: write output: %w", err)
	}
	return buf.Bytes(), nil
}

// variables builds the render scope: engine names first, then registered
// data, then the form fields.
func (r *Renderer) variables(options render.RenderOptions) (*directive.Variables, error) {
	var schema formschema.Schema
	if options.Schema != nil {
		schema = *options.Schema
	} else {
		derived, err := r.forms.For(options.Form)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: form schema: %w", err)
		}
		schema = derived
	}

	vars := directive.NewVariables()
	vars.Inject(directive.ErrorsVar, render.ResolveMessages(options, schema.Names()...), directive.SourceEngine)
	if r.classes != nil {
		vars.Inject(directive.ClassesVar, classification.NewFunctions(r.classes, language.Make(options.Locale)), directive.SourceEngine)
	}
	vars.Inject(directive.HandyVar, handy.New(options.Locale, r.location), directive.SourceEngine)
	vars.Inject(directive.AssetVersionVar, options.AssetVersion, directive.SourceEngine)
	for _, name := range sortedKeys(r.funcs) {
		vars.Inject(name, r.funcs[name], directive.SourceEngine)
	}

	guard := r.dispatcher.Guard()
	for _, name := range sortedKeys(options.Data) {
		if err := guard.RegisterData(vars, name, options.Data[name]); err != nil {
			return nil, err
		}
	}
	if err := guard.RegisterForm(vars, schema.Extract(options.Form)); err != nil {
		return nil, err
	}
	return vars, nil
}

func (r *Renderer) fail(ctx context.Context, path string, err error) ([]byte, error) {
	ctxlog.FromContext(ctx).Error("render failed", "template", path, "error", err)
	if r.fallback == "" || r.views == nil {
		return nil, err
	}

	data := map[string]any{
		"template": path,
		"error":    err.Error(),
	}
	var unresolved *directive.UnresolvedExpressionError
	if errors.As(err, &unresolved) {
		data["attribute"] = unresolved.Attribute
		data["expression"] = unresolved.Expression
	}
	out, viewErr := r.views.RenderTemplate(r.fallback, data)
	if viewErr != nil {
		return nil, errors.Join(err, viewErr)
	}
	return []byte(out), err
}

func (r *Renderer) withLogger(ctx context.Context) context.Context {
	if r.logger == nil {
		return ctx
	}
	if _, ok := ctxlog.Lookup(ctx); ok {
		return ctx
	}
	return ctxlog.WithLogger(ctx, r.logger)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
