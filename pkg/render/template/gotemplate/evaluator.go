package gotemplate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/render/template"
)

// ErrEmptyExpression is returned when an expression is blank.
var ErrEmptyExpression = errors.New("gotemplate: empty expression")

// Evaluator evaluates host expressions with the pongo2 expression language.
// Each expression is compiled once into a template that hands its result to
// a sink function, so evaluation returns Go values instead of text.
type Evaluator struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ template.ExpressionEvaluator = (*Evaluator)(nil)

// NewEvaluator returns an evaluator with an empty compile cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		set:   pongo2.NewSet("formbind-expr", pongo2.NewFSLoader(emptyFS{})),
		cache: make(map[string]*pongo2.Template),
	}
}

// Eval evaluates expr with vars in scope. Unknown variables evaluate to nil;
// syntax errors and failing method calls are returned.
func (e *Evaluator) Eval(expr string, vars map[string]any) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}

	tmpl, err := e.compile(expr)
	if err != nil {
		return nil, err
	}

	var (
		result   any
		captured bool
	)
	ctx := make(pongo2.Context, len(vars)+1)
	for name, value := range vars {
		ctx[name] = value
	}
	ctx[directive.EvalSinkVar] = func(v *pongo2.Value) string {
		result = v.Interface()
		captured = true
		return ""
	}

	if _, err := tmpl.Execute(ctx); err != nil {
		return nil, fmt.Errorf("gotemplate: evaluate %q: %w", expr, err)
	}
	if !captured {
		return nil, fmt.Errorf("gotemplate: evaluate %q: no result", expr)
	}
	return result, nil
}

func (e *Evaluator) compile(expr string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[expr]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[expr]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromString("{{ " + directive.EvalSinkVar + "(" + expr + ") }}")
	if err != nil {
		return nil, fmt.Errorf("gotemplate: compile %q: %w", expr, err)
	}
	e.cache[expr] = tmpl
	return tmpl, nil
}

// Truthy applies the expression language's truth rules: nil, zero numbers,
// false and empty strings or collections are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	return pongo2.AsValue(v).IsTrue()
}

// Stringify renders an evaluated value as attribute or text content.
func Stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return value.String()
	case float32, float64:
		return fmt.Sprint(value)
	}
	return pongo2.AsValue(v).String()
}
