package directive

import (
	"strings"

	"github.com/goliatone/go-formbind/pkg/classification"
	"github.com/goliatone/go-formbind/pkg/token"
)

// Defaults used when no option overrides them.
const (
	DefaultPrefix       = "fg"
	DefaultHostPrefix   = "tpl"
	DefaultInvalidClass = "validError"
	DefaultErrorsClass  = "errors"
	DefaultErrorsVar    = "er"
)

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	prefix          string
	hostPrefix      string
	invalidClass    string
	errorsClass     string
	iterVar         string
	errorsVar       string
	tokenField      string
	classifications classification.Provider
	reservedHook    ReservedNamesHook
	extra           []registration
}

type registration struct {
	directive Directive
	handler   Handler
}

func defaultConfig() config {
	return config{
		prefix:       DefaultPrefix,
		hostPrefix:   DefaultHostPrefix,
		invalidClass: DefaultInvalidClass,
		errorsClass:  DefaultErrorsClass,
		iterVar:      DefaultIterVar,
		errorsVar:    DefaultErrorsVar,
		tokenField:   token.DefaultFieldName,
	}
}

// WithPrefix sets the prefix of custom directives ("fg" in fg:property).
func WithPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			cfg.prefix = trimmed
		}
	}
}

// WithHostPrefix sets the prefix of generated host directives.
func WithHostPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			cfg.hostPrefix = trimmed
		}
	}
}

// WithInvalidClass sets the class appended to fields with errors.
func WithInvalidClass(class string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			cfg.invalidClass = trimmed
		}
	}
}

// WithErrorsClass sets the class merged into elements carrying the errors
// directive.
func WithErrorsClass(class string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			cfg.errorsClass = trimmed
		}
	}
}

// WithDefaultIterVar sets the iteration variable used by optionCls values
// that name none. The status variable follows as <name>Stat.
func WithDefaultIterVar(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); isIdentifier(trimmed) {
			cfg.iterVar = trimmed
		}
	}
}

// WithTokenFieldName sets the submission name of the token hidden input.
func WithTokenFieldName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.tokenField = trimmed
		}
	}
}

// WithClassifications installs the classification provider used to validate
// optionCls references.
func WithClassifications(provider classification.Provider) Option {
	return func(cfg *config) {
		cfg.classifications = provider
	}
}

// WithReservedNamesHook merges extra reserved names on first use. Hooks from
// repeated calls are combined.
func WithReservedNamesHook(hook ReservedNamesHook) Option {
	return func(cfg *config) {
		if hook == nil {
			return
		}
		previous := cfg.reservedHook
		if previous == nil {
			cfg.reservedHook = hook
			return
		}
		cfg.reservedHook = func() []string {
			return append(previous(), hook()...)
		}
	}
}

// WithDirective registers an additional directive after the built-in ones.
func WithDirective(d Directive, h Handler) Option {
	return func(cfg *config) {
		cfg.extra = append(cfg.extra, registration{directive: d, handler: h})
	}
}
