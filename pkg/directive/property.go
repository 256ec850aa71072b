package directive

import (
	"context"
	"strings"
)

// handleProperty binds a control to a form property: its submission name,
// its current value or text, and the invalid style when the field has errors.
func (d *Dispatcher) handleProperty(_ context.Context, c *Call) error {
	raw := strings.TrimSpace(c.Value)
	if raw == "" {
		return c.Malformed("empty property reference")
	}
	field := ResolveFieldName(raw, c.Scope.stack())
	name := Quote(field)

	switch c.Element.Tag {
	case "input":
		c.Emit(HostName, name)
		inputType, _ := c.Element.Get("type")
		switch strings.ToLower(strings.TrimSpace(inputType)) {
		case "checkbox", "radio":
		default:
			c.Emit(HostValue, raw)
		}
	case "select":
		c.Emit(HostName, name)
		c.Bind(Binding{
			SelectProperty: raw,
			Field:          field,
			Multiple:       isMultiple(c.Element),
		})
	case "textarea":
		c.Emit(HostName, name)
		c.Emit(HostText, raw)
	default:
		c.Emit(HostText, raw)
	}

	exists := errorsExists(field)
	switch {
	case !c.Element.Has(c.HostKey(HostClassAppend)):
		c.Emit(HostClassAppend, Conditional(exists, Quote(d.cfg.invalidClass)))
	case !c.Element.Has(c.HostKey(HostAttrAppend)):
		c.Emit(HostAttrAppend, AttrAppend("class", Conditional(exists, Quote(" "+d.cfg.invalidClass))))
	}
	return nil
}

// isMultiple reports a select carrying the boolean multiple attribute, bare
// or spelled out.
func isMultiple(el *Element) bool {
	value, ok := el.Get("multiple")
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, "multiple")
}
