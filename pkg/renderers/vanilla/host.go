package vanilla

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/render/template/gotemplate"
)

type outcome int

const (
	keepElement outcome = iota
	dropElement
	dropBody
	unwrapElement
)

// hostProcessor evaluates one host directive. Processors run in table order;
// each/if are handled by the walker before custom directives run.
type hostProcessor struct {
	name string
	run  func(h *hostCall, expr string) (outcome, error)
}

var hostProcessors = []hostProcessor{
	{name: directive.HostRemove, run: processRemove},
	{name: directive.HostName, run: attrProcessor("name")},
	{name: directive.HostValue, run: attrProcessor("value")},
	{name: directive.HostText, run: processText},
	{name: directive.HostSelected, run: processSelected},
	{name: directive.HostClassAppend, run: processClassAppend},
	{name: directive.HostAttrAppend, run: processAttrAppend},
}

type hostCall struct {
	w    *walker
	node *html.Node
	env  map[string]any
	key  string
}

func (h *hostCall) eval(expr string) (any, error) {
	return h.w.eval(h.key, expr, h.env)
}

// evalConditional evaluates "cond ? value" forms. ok is false when the
// condition does not hold.
func (h *hostCall) evalConditional(expr string) (string, bool, error) {
	if cond, value, isConditional := directive.SplitConditional(expr); isConditional {
		result, err := h.eval(cond)
		if err != nil {
			return "", false, err
		}
		if !gotemplate.Truthy(result) {
			return "", false, nil
		}
		expr = value
	}
	result, err := h.eval(expr)
	if err != nil {
		return "", false, err
	}
	return gotemplate.Stringify(result), true, nil
}

func (h *hostCall) run() (outcome, error) {
	result := keepElement
	for _, p := range hostProcessors {
		h.key = h.w.hostKey(p.name)
		expr, ok := takeAttr(h.node, h.key)
		if !ok {
			continue
		}
		out, err := p.run(h, expr)
		if err != nil {
			return keepElement, err
		}
		if out == dropElement {
			return dropElement, nil
		}
		if out != keepElement {
			result = out
		}
	}
	if err := h.generic(); err != nil {
		return keepElement, err
	}
	return result, nil
}

// generic evaluates the remaining host attributes as plain attribute
// setters (tpl:href sets href). Custom directive names written with the host
// prefix are dropped; Detect has already reported them.
func (h *hostCall) generic() error {
	prefix := h.w.dispatcher.HostPrefix() + ":"
	mistaken := make(map[string]struct{})
	for _, d := range h.w.dispatcher.Directives() {
		mistaken[strings.ToLower(d.Name)] = struct{}{}
	}

	pending := make([]html.Attribute, 0)
	for _, attr := range h.node.Attr {
		if attr.Namespace == "" && strings.HasPrefix(strings.ToLower(attr.Key), prefix) {
			pending = append(pending, attr)
		}
	}
	for _, attr := range pending {
		removeAttr(h.node, attr.Key)
		target := strings.ToLower(attr.Key[len(prefix):])
		if _, skip := mistaken[target]; skip || target == "" {
			continue
		}
		h.key = attr.Key
		value, err := h.eval(attr.Val)
		if err != nil {
			return err
		}
		if value == nil {
			removeAttr(h.node, target)
			continue
		}
		setAttr(h.node, target, gotemplate.Stringify(value))
	}
	return nil
}

func attrProcessor(target string) func(h *hostCall, expr string) (outcome, error) {
	return func(h *hostCall, expr string) (outcome, error) {
		value, err := h.eval(expr)
		if err != nil {
			return keepElement, err
		}
		setAttr(h.node, target, gotemplate.Stringify(value))
		return keepElement, nil
	}
}

func processText(h *hostCall, expr string) (outcome, error) {
	value, err := h.eval(expr)
	if err != nil {
		return keepElement, err
	}
	setText(h.node, gotemplate.Stringify(value))
	return keepElement, nil
}

func processSelected(h *hostCall, expr string) (outcome, error) {
	value, err := h.eval(expr)
	if err != nil {
		return keepElement, err
	}
	if gotemplate.Truthy(value) {
		setAttr(h.node, "selected", "selected")
	} else {
		removeAttr(h.node, "selected")
	}
	return keepElement, nil
}

func processClassAppend(h *hostCall, expr string) (outcome, error) {
	class, ok, err := h.evalConditional(expr)
	if err != nil || !ok {
		return keepElement, err
	}
	existing, _ := getAttr(h.node, "class")
	if merged := appendClass(existing, class); merged != "" {
		setAttr(h.node, "class", merged)
	}
	return keepElement, nil
}

// processAttrAppend appends evaluated text to attributes without a
// separator; generated class appends carry their own leading space.
func processAttrAppend(h *hostCall, expr string) (outcome, error) {
	pairs, err := directive.SplitAttrAppend(expr)
	if err != nil {
		return keepElement, h.malformed(err)
	}
	for _, pair := range pairs {
		text, ok, err := h.evalConditional(pair[1])
		if err != nil {
			return keepElement, err
		}
		if !ok || text == "" {
			continue
		}
		existing, _ := getAttr(h.node, pair[0])
		setAttr(h.node, pair[0], existing+text)
	}
	return keepElement, nil
}

func processRemove(h *hostCall, expr string) (outcome, error) {
	switch strings.ToLower(strings.TrimSpace(expr)) {
	case "all":
		return dropElement, nil
	case "body":
		return dropBody, nil
	case "tag":
		return unwrapElement, nil
	case "none", "":
		return keepElement, nil
	}
	return keepElement, h.malformed(&directive.MalformedDirectiveError{Value: expr, Reason: "expected all, body, tag or none"})
}

func (h *hostCall) malformed(err error) error {
	if m, ok := err.(*directive.MalformedDirectiveError); ok {
		m.TemplatePath, m.Attribute = h.w.path, h.key
	}
	return err
}
