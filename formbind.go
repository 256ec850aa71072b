package formbind

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbind/pkg/classification"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/messages"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbind/pkg/token"
)

// RenderOptions describes per-request data: the form object, handler data,
// validation messages and the action identity used for tokens.
type RenderOptions = render.RenderOptions

// Messages aliases the validation message container exported to templates
// as errors.
type Messages = messages.Messages

// Diagnostic aliases the mistaken prefix report returned by Lint.
type Diagnostic = directive.Diagnostic

// Option configures New.
type Option func(*options)

type options struct {
	cfg       config.Config
	templates fs.FS
	classes   classification.Provider
	classesFS fs.FS
	selector  theme.ThemeSelector
	tokens    *token.Manager
	funcs     map[string]any
	logger    *slog.Logger
	renderer  []vanilla.Option
}

// WithConfig applies a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithTemplatesFS loads templates from fsys instead of the configured
// directory.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(o *options) {
		o.templates = fsys
	}
}

// WithClassifications uses provider instead of loading definition files.
func WithClassifications(provider classification.Provider) Option {
	return func(o *options) {
		o.classes = provider
	}
}

// WithClassificationsFS loads classification definitions from fsys.
func WithClassificationsFS(fsys fs.FS) Option {
	return func(o *options) {
		o.classesFS = fsys
	}
}

// WithThemeSelector resolves the configured theme to fill the style classes
// the configuration leaves empty.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *options) {
		o.selector = selector
	}
}

// WithTokenManager shares the token manager that handlers use to save and
// verify double submit tokens.
func WithTokenManager(manager *token.Manager) Option {
	return func(o *options) {
		o.tokens = manager
	}
}

// WithTemplateFuncs exports helper functions to every render.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(o *options) {
		if o.funcs == nil {
			o.funcs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			o.funcs[name] = fn
		}
	}
}

// WithLogger sets the logger used when a render context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRendererOptions forwards options to the vanilla renderer. They are
// applied after the ones derived from the configuration.
func WithRendererOptions(opts ...vanilla.Option) Option {
	return func(o *options) {
		o.renderer = append(o.renderer, opts...)
	}
}

// Engine renders templates carrying formbind directives.
type Engine struct {
	cfg      config.Config
	renderer *vanilla.Renderer
	registry *render.Registry
	tokens   *token.Manager
}

// New builds an engine: it resolves theme styles, loads classifications and
// configures the vanilla renderer.
func New(opts ...Option) (*Engine, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	styles, err := o.cfg.SelectStyles(o.selector)
	if err != nil {
		return nil, fmt.Errorf("formbind: %w", err)
	}
	cfg := o.cfg.WithStyles(styles)

	classes, err := loadClassifications(o, cfg)
	if err != nil {
		return nil, err
	}

	templates := o.templates
	if templates == nil && cfg.Templates != "" {
		templates = os.DirFS(cfg.Templates)
	}

	rendererOpts := []vanilla.Option{
		vanilla.WithTemplatesFS(templates),
		vanilla.WithDirectiveOptions(cfg.DirectiveOptions()...),
		vanilla.WithFallbackView(cfg.FallbackView),
		vanilla.WithTemplateFuncs(o.funcs),
		vanilla.WithLogger(o.logger),
	}
	if classes != nil {
		rendererOpts = append(rendererOpts, vanilla.WithClassifications(classes))
	}
	rendererOpts = append(rendererOpts, o.renderer...)

	renderer, err := vanilla.New(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("formbind: %w", err)
	}

	registry := render.NewRegistry()
	if err := registry.Register(renderer); err != nil {
		return nil, fmt.Errorf("formbind: %w", err)
	}

	tokens := o.tokens
	if tokens == nil {
		tokens = token.NewManager()
	}

	return &Engine{
		cfg:      cfg,
		renderer: renderer,
		registry: registry,
		tokens:   tokens,
	}, nil
}

func loadClassifications(o options, cfg config.Config) (classification.Provider, error) {
	if o.classes != nil {
		return o.classes, nil
	}
	fsys := o.classesFS
	if fsys == nil && cfg.Classifications != "" {
		fsys = os.DirFS(cfg.Classifications)
	}
	if fsys == nil {
		return nil, nil
	}
	registry, err := classification.LoadFS(fsys)
	if err != nil {
		return nil, fmt.Errorf("formbind: load classifications: %w", err)
	}
	return registry, nil
}

// Config returns the effective configuration, theme styles included.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Renderer exposes the underlying vanilla renderer.
func (e *Engine) Renderer() *vanilla.Renderer {
	return e.renderer
}

// Registry exposes the renderer registry so integrations can add renderers
// next to the vanilla one.
func (e *Engine) Registry() *render.Registry {
	return e.registry
}

// Tokens returns the token manager.
func (e *Engine) Tokens() *token.Manager {
	return e.tokens
}

// Render renders the named template with the default renderer.
func (e *Engine) Render(ctx context.Context, name string, opts RenderOptions) ([]byte, error) {
	return e.RenderWith(ctx, "", name, opts)
}

// RenderWith renders the named template with a registered renderer. An
// empty rendererName selects the default.
func (e *Engine) RenderWith(ctx context.Context, rendererName, name string, opts RenderOptions) ([]byte, error) {
	renderer, err := e.registry.Get(rendererName)
	if err != nil {
		return nil, fmt.Errorf("formbind: %w", err)
	}
	return renderer.Render(ctx, name, opts)
}

// RenderForm renders the named template for session. When opts carries no
// issuer, the tokens saved for the session are used.
func (e *Engine) RenderForm(ctx context.Context, session, name string, opts RenderOptions) ([]byte, error) {
	if opts.Tokens == nil {
		opts.Tokens = e.tokens.Issuer(session)
	}
	return e.Render(ctx, name, opts)
}

// RenderString renders inline template content.
func (e *Engine) RenderString(ctx context.Context, content string, opts RenderOptions) ([]byte, error) {
	return e.renderer.RenderString(ctx, content, opts)
}

// Lint reports custom directives written with the host prefix in the named
// template.
func (e *Engine) Lint(name string) ([]Diagnostic, error) {
	return e.renderer.Lint(name)
}
