package vanilla

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formbind/internal/ctxlog"
	"github.com/goliatone/go-formbind/pkg/directive"
	rendertemplate "github.com/goliatone/go-formbind/pkg/render/template"
	"github.com/goliatone/go-formbind/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbind/pkg/token"
)

// walker performs one render over a cloned template tree. It is owned by a
// single goroutine.
type walker struct {
	ctx        context.Context
	dispatcher *directive.Dispatcher
	evaluator  rendertemplate.ExpressionEvaluator
	path       string
	scope      *directive.Scope
	hidden     []token.HiddenField
}

func (w *walker) hostKey(name string) string {
	return w.dispatcher.HostKey(name)
}

func (w *walker) children(parent *html.Node, vars *directive.Variables) error {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			if err := w.element(c, vars); err != nil {
				return err
			}
		}
		c = next
	}
	return nil
}

func (w *walker) element(n *html.Node, vars *directive.Variables) error {
	for _, d := range w.dispatcher.Detect(snapshot(n), w.path) {
		ctxlog.FromContext(w.ctx).Warn("directive written with the host prefix is ignored",
			"template", w.path,
			"attribute", d.Attribute,
			"suggestion", d.Suggestion,
		)
	}
	return w.rewrite(n, vars)
}

// rewrite runs, in order: an author written each, an author written if, the
// custom directives, a generated each, and the remaining host directives.
func (w *walker) rewrite(n *html.Node, vars *directive.Variables) error {
	eachKey := w.hostKey(directive.HostEach)
	if expr, ok := takeAttr(n, eachKey); ok {
		return w.each(n, eachKey, expr, vars, true)
	}

	ifKey := w.hostKey(directive.HostIf)
	if expr, ok := takeAttr(n, ifKey); ok {
		value, err := w.eval(ifKey, expr, vars.Map())
		if err != nil {
			return err
		}
		if !gotemplate.Truthy(value) {
			n.Parent.RemoveChild(n)
			return nil
		}
	}

	result, err := w.dispatcher.Process(w.ctx, snapshot(n), w.scope)
	if err != nil {
		return err
	}
	if result.RemoveElement {
		n.Parent.RemoveChild(n)
		return nil
	}
	for _, key := range result.Remove {
		removeAttr(n, key)
	}
	for _, attr := range result.Set {
		setAttr(n, attr.Key, attr.Val)
	}

	if result.Reevaluate {
		if expr, ok := takeAttr(n, eachKey); ok {
			return w.each(n, eachKey, expr, vars, false)
		}
	}
	return w.host(n, vars, result.Binding)
}

// each replaces n with one clone per item. Every clone is rewritten inside
// its own variable scope. Author iterations also push a frame so nested
// properties get indexed names; generated ones (errors, optionCls) do not.
func (w *walker) each(n *html.Node, attr, raw string, vars *directive.Variables, tracked bool) error {
	if !strings.Contains(raw, ":") {
		return &directive.MalformedDirectiveError{TemplatePath: w.path, Attribute: attr, Value: raw, Reason: "expected \"item : expression\""}
	}
	spec, err := directive.ParseIterationSpec(raw)
	if err != nil {
		var malformed *directive.MalformedDirectiveError
		if errors.As(err, &malformed) {
			malformed.TemplatePath, malformed.Attribute = w.path, attr
		}
		return err
	}

	value, err := w.eval(attr, spec.Ref, vars.Map())
	if err != nil {
		return err
	}

	items := iterate(value)
	stack := w.scope.Stack
	for i, item := range items {
		clone := cloneNode(n)
		n.Parent.InsertBefore(clone, n)

		frame := directive.NewFrame(stack, spec.IterVar, spec.StatusVar, spec.Ref, i)
		scope := vars.Child()
		scope.Inject(spec.IterVar, item, directive.SourceIteration)
		if !tracked {
			scope.Inject(frame.StatusVar, newStatus(i, len(items), item, ""), directive.SourceIteration)
			if err := w.rewrite(clone, scope); err != nil {
				return err
			}
			continue
		}
		scope.Inject(frame.StatusVar, newStatus(i, len(items), item, frame.PathPrefix), directive.SourceIteration)

		stack.Push(frame)
		err := w.rewrite(clone, scope)
		stack.Pop()
		if err != nil {
			return err
		}
	}
	n.Parent.RemoveChild(n)
	return nil
}

// host evaluates the host directives left on n and descends into its
// children with the element's binding on the open element stack.
func (w *walker) host(n *html.Node, vars *directive.Variables, binding directive.Binding) error {
	call := &hostCall{w: w, node: n, env: vars.Map()}
	outcome, err := call.run()
	if err != nil {
		return err
	}
	if outcome == dropElement {
		n.Parent.RemoveChild(n)
		return nil
	}
	if outcome == dropBody {
		for n.FirstChild != nil {
			n.RemoveChild(n.FirstChild)
		}
	}

	if n.Data == "form" {
		w.appendHidden(n)
	}

	binding.Tag = n.Data
	w.scope.Ancestors = append(w.scope.Ancestors, binding)
	err = w.children(n, vars)
	w.scope.Ancestors = w.scope.Ancestors[:len(w.scope.Ancestors)-1]
	if err != nil {
		return err
	}

	if outcome == unwrapElement {
		unwrap(n)
	}
	return nil
}

func (w *walker) appendHidden(form *html.Node) {
	for _, field := range w.hidden {
		if hasNamedControl(form, field.Name) {
			continue
		}
		form.AppendChild(hiddenInput(field.Name, field.Value))
	}
}

func (w *walker) eval(attr, expr string, env map[string]any) (any, error) {
	value, err := w.evaluator.Eval(expr, env)
	if err != nil {
		return nil, &directive.UnresolvedExpressionError{
			TemplatePath: w.path,
			Attribute:    attr,
			Expression:   expr,
			Variables:    env,
			Err:          err,
		}
	}
	return value, nil
}

// lintTree collects mistaken prefix diagnostics for every element.
func lintTree(d *directive.Dispatcher, root *html.Node, path string) []directive.Diagnostic {
	var out []directive.Diagnostic
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, d.Detect(snapshot(n), path)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return out
}
