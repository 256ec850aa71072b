package directive

import "fmt"

// Diagnostic reports a custom directive written with the host prefix, such
// as tpl:property where fg:property was meant. The host ignores those
// attributes, so they would otherwise fail silently.
type Diagnostic struct {
	TemplatePath string
	Tag          string
	Attribute    string
	Value        string
	Suggestion   string
}

func (d Diagnostic) String() string {
	path := d.TemplatePath
	if path == "" {
		path = "<inline>"
	}
	return fmt.Sprintf("%s: <%s %s=%q> uses the host prefix, write %s instead", path, d.Tag, d.Attribute, d.Value, d.Suggestion)
}

// Detect returns a diagnostic for every registered directive that el spells
// with the host prefix.
func (d *Dispatcher) Detect(el *Element, templatePath string) []Diagnostic {
	if el == nil {
		return nil
	}
	var out []Diagnostic
	for _, directive := range d.registry.sorted() {
		mistaken := d.HostKey(directive.Name)
		value, ok := el.Get(mistaken)
		if !ok {
			continue
		}
		out = append(out, Diagnostic{
			TemplatePath: templatePath,
			Tag:          el.Tag,
			Attribute:    mistaken,
			Value:        value,
			Suggestion:   d.Key(directive.Name),
		})
	}
	return out
}
