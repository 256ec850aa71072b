package directive

import (
	"context"
	"slices"
	"strings"
)

// handleErrors repeats the element once per validation message of a field,
// or of the whole form for the value "all".
func (d *Dispatcher) handleErrors(_ context.Context, c *Call) error {
	raw := strings.TrimSpace(c.Value)
	if raw == "" {
		return c.Malformed("empty errors reference")
	}

	var iterable string
	if strings.EqualFold(raw, "all") {
		iterable = errorsAll()
	} else {
		iterable = errorsPart(ResolveFieldName(raw, c.Scope.stack()))
	}

	c.Emit(HostEach, d.cfg.errorsVar+" : "+iterable)
	c.Emit(HostText, d.cfg.errorsVar+".Message")
	existing, _ := c.Element.Get("class")
	c.Set("class", mergeClass(existing, d.cfg.errorsClass))
	return nil
}

func mergeClass(existing, class string) string {
	fields := strings.Fields(existing)
	if slices.Contains(fields, class) {
		return strings.Join(fields, " ")
	}
	return strings.Join(append(fields, class), " ")
}
