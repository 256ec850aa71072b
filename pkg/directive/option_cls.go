package directive

import "context"

// handleOptionCls repeats an option once per classification member and binds
// its value, label and selected state.
func (d *Dispatcher) handleOptionCls(_ context.Context, c *Call) error {
	if c.Element.Tag != "option" {
		return c.Malformed("optionCls is only allowed on option elements")
	}

	spec, err := parseIterationSpec(c.Value, d.cfg.iterVar)
	if err != nil {
		return err
	}
	if _, err := d.expander.Expand(spec.Ref); err != nil {
		return err
	}

	c.Emit(HostEach, eachValue(spec.IterVar, spec.StatusVar, clsList(spec.Ref)))
	c.Emit(HostValue, clsCode(spec.IterVar))
	c.Emit(HostText, clsAlias(spec.IterVar))
	if sel, ok := c.Scope.nearestSelect(); ok {
		c.Emit(HostSelected, d.expander.SelectedExpression(spec.IterVar, sel.SelectProperty, sel.Multiple))
	}
	return nil
}
