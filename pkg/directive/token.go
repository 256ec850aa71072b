package directive

import (
	"context"
	"strings"

	"github.com/goliatone/go-formbind/pkg/token"
)

// handleToken writes the pre-issued double submit token into a hidden input,
// or drops the input when the directive is false.
func (d *Dispatcher) handleToken(_ context.Context, c *Call) error {
	if c.Element.Tag != "input" {
		return &TokenPlacementError{Tag: c.Element.Tag}
	}
	inputType, _ := c.Element.Get("type")
	if !strings.EqualFold(strings.TrimSpace(inputType), "hidden") {
		return &TokenPlacementError{Tag: c.Element.Tag, InputType: inputType}
	}

	switch strings.ToLower(strings.TrimSpace(c.Value)) {
	case "true":
	case "false":
		c.RemoveElement()
		return nil
	default:
		return c.Malformed("token expects true or false")
	}

	value := token.None
	action := ""
	if c.Scope != nil {
		action = c.Scope.Action
		if c.Scope.Tokens != nil {
			value = c.Scope.Tokens.TokenFor(action)
		}
	}
	c.Emit(HostName, Quote(d.cfg.tokenField))
	c.Emit(HostValue, Quote(value))
	return nil
}
