package directive

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-formbind/internal/ctxlog"
	"github.com/goliatone/go-formbind/pkg/token"
)

// Binding is the state an open element passes down to its descendants.
type Binding struct {
	Tag string
	// SelectProperty is the raw property bound to a select element.
	SelectProperty string
	// Field is SelectProperty resolved to its submission name.
	Field    string
	Multiple bool
}

// Scope is the render state visible to handlers at one element.
type Scope struct {
	TemplatePath string
	// Action identifies the action the form submits to; tokens are keyed by it.
	Action string
	Stack  *IterationStack
	// Ancestors holds the bindings of the open elements, outermost first.
	Ancestors []Binding
	Tokens    token.Issuer
}

// nearestSelect walks the open elements up to the closest select.
func (s *Scope) nearestSelect() (Binding, bool) {
	if s == nil {
		return Binding{}, false
	}
	for i := len(s.Ancestors) - 1; i >= 0; i-- {
		if s.Ancestors[i].Tag == "select" {
			return s.Ancestors[i], s.Ancestors[i].SelectProperty != ""
		}
	}
	return Binding{}, false
}

func (s *Scope) stack() *IterationStack {
	if s == nil {
		return nil
	}
	return s.Stack
}

// RewriteResult is what the host applies to an element after Process.
type RewriteResult struct {
	// Set lists attributes to write, in emission order.
	Set []Attribute
	// Remove lists custom directive attributes to drop.
	Remove []string
	// RemoveElement drops the element and its subtree.
	RemoveElement bool
	// Reevaluate asks the host to evaluate the element's host directives
	// again, including the generated ones.
	Reevaluate bool
	Binding    Binding
	Matched    []string
}

func (r *RewriteResult) has(key string) bool {
	for _, attr := range r.Set {
		if strings.EqualFold(attr.Key, key) {
			return true
		}
	}
	return false
}

// Call is one handler invocation.
type Call struct {
	Directive Directive
	Attribute string
	Value     string
	Element   *Element
	Scope     *Scope

	d      *Dispatcher
	result *RewriteResult
}

// Emit writes a generated host directive unless the author, or a handler
// that ran earlier, already supplied that key. It reports whether it wrote.
func (c *Call) Emit(name, expr string) bool {
	key := c.d.HostKey(name)
	if c.Element.Has(key) || c.result.has(key) {
		return false
	}
	c.result.Set = append(c.result.Set, Attribute{Key: key, Val: expr})
	return true
}

// Set overwrites a plain attribute.
func (c *Call) Set(key, value string) {
	for i := range c.result.Set {
		if strings.EqualFold(c.result.Set[i].Key, key) {
			c.result.Set[i].Val = value
			return
		}
	}
	c.result.Set = append(c.result.Set, Attribute{Key: key, Val: value})
}

// RemoveElement drops the element from the output.
func (c *Call) RemoveElement() {
	c.result.RemoveElement = true
}

// Bind records state for descendant handlers.
func (c *Call) Bind(b Binding) {
	c.result.Binding = b
}

// Malformed builds a MalformedDirectiveError for this call.
func (c *Call) Malformed(reason string) error {
	return &MalformedDirectiveError{Value: c.Value, Reason: reason}
}

// HostKey qualifies a host directive name.
func (c *Call) HostKey(name string) string {
	return c.d.HostKey(name)
}

// Dispatcher runs the registered directives of each element.
type Dispatcher struct {
	cfg      config
	registry *Registry
	reserved *ReservedNames
	expander Expander
}

// New constructs a Dispatcher with the built-in directives registered.
func New(options ...Option) (*Dispatcher, error) {
	cfg := defaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	d := &Dispatcher{
		cfg:      cfg,
		registry: NewRegistry(),
		reserved: NewReservedNames(DefaultReservedNames, cfg.reservedHook),
		expander: NewExpander(cfg.classifications),
	}

	builtins := []registration{
		{Directive{Name: PropertyDirective, Precedence: 950, RemoveOriginal: true}, HandlerFunc(d.handleProperty)},
		{Directive{Name: ErrorsDirective, Precedence: 950, RemoveOriginal: true}, HandlerFunc(d.handleErrors)},
		{Directive{Name: TokenDirective, Precedence: 950, RemoveOriginal: true}, HandlerFunc(d.handleToken)},
		{Directive{Name: OptionClsDirective, Precedence: 200, RemoveOriginal: true}, HandlerFunc(d.handleOptionCls)},
	}
	for _, reg := range append(builtins, cfg.extra...) {
		if err := d.registry.Register(reg.directive, reg.handler); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Key qualifies a custom directive name ("property" becomes "fg:property").
func (d *Dispatcher) Key(name string) string {
	return d.cfg.prefix + ":" + name
}

// HostKey qualifies a host directive name ("each" becomes "tpl:each").
func (d *Dispatcher) HostKey(name string) string {
	return d.cfg.hostPrefix + ":" + name
}

// Prefix returns the custom directive prefix.
func (d *Dispatcher) Prefix() string { return d.cfg.prefix }

// HostPrefix returns the host directive prefix.
func (d *Dispatcher) HostPrefix() string { return d.cfg.hostPrefix }

// Directives lists the registered directives in processing order.
func (d *Dispatcher) Directives() []Directive {
	return d.registry.List()
}

// Reserved returns the reserved name set.
func (d *Dispatcher) Reserved() *ReservedNames {
	return d.reserved
}

// Guard returns a guard over the reserved names.
func (d *Dispatcher) Guard() Guard {
	return NewGuard(d.reserved)
}

// Expander returns the classification expander.
func (d *Dispatcher) Expander() Expander {
	return d.expander
}

// Process runs every registered directive present on el, highest precedence
// first, and returns the rewrite for the host to apply.
func (d *Dispatcher) Process(ctx context.Context, el *Element, scope *Scope) (RewriteResult, error) {
	var result RewriteResult
	if el == nil {
		return result, nil
	}

	for _, e := range d.registry.sorted() {
		key := d.Key(e.Name)
		value, ok := el.Get(key)
		if !ok {
			continue
		}

		call := &Call{
			Directive: e.Directive,
			Attribute: key,
			Value:     value,
			Element:   el,
			Scope:     scope,
			d:         d,
			result:    &result,
		}
		if err := e.handler.Handle(ctx, call); err != nil {
			return RewriteResult{}, annotate(err, scope, key, value)
		}

		result.Matched = append(result.Matched, e.Name)
		if e.RemoveOriginal {
			result.Remove = append(result.Remove, key)
		}
		if result.RemoveElement {
			break
		}
	}

	if len(result.Matched) > 0 {
		result.Reevaluate = !result.RemoveElement
		path := ""
		if scope != nil {
			path = scope.TemplatePath
		}
		ctxlog.FromContext(ctx).Debug("directives rewritten",
			"template", path,
			"element", el.Tag,
			"directives", result.Matched,
			"generated", len(result.Set),
		)
	}
	return result, nil
}

func annotate(err error, scope *Scope, attr, value string) error {
	path := ""
	if scope != nil {
		path = scope.TemplatePath
	}

	var malformed *MalformedDirectiveError
	var notFound *ClassificationNotFoundError
	var groupNotFound *ClassificationGroupNotFoundError
	var placement *TokenPlacementError
	switch {
	case errors.As(err, &malformed):
		fill(&malformed.TemplatePath, path)
		fill(&malformed.Attribute, attr)
		fill(&malformed.Value, value)
	case errors.As(err, &notFound):
		fill(&notFound.TemplatePath, path)
		fill(&notFound.Attribute, attr)
		fill(&notFound.Value, value)
	case errors.As(err, &groupNotFound):
		fill(&groupNotFound.TemplatePath, path)
		fill(&groupNotFound.Attribute, attr)
		fill(&groupNotFound.Value, value)
	case errors.As(err, &placement):
		fill(&placement.TemplatePath, path)
		fill(&placement.Attribute, attr)
	}
	return err
}

func fill(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
