package directive

import (
	"fmt"
	"maps"

	"github.com/goliatone/go-formbind/pkg/formschema"
)

// Source records where a template variable came from.
type Source int

const (
	SourceEngine Source = iota
	SourceData
	SourceForm
	SourceIteration
)

func (s Source) String() string {
	switch s {
	case SourceEngine:
		return "engine"
	case SourceData:
		return "data"
	case SourceForm:
		return "form"
	case SourceIteration:
		return "iteration"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Variables is the name to value mapping visible to expressions during one
// render. Child scopes created by Child see their parent's values and shadow
// them locally.
type Variables struct {
	parent  *Variables
	values  map[string]any
	sources map[string]Source
	order   []string
}

// NewVariables returns an empty mapping.
func NewVariables() *Variables {
	return &Variables{values: make(map[string]any), sources: make(map[string]Source)}
}

// Child returns a scope layered on top of v.
func (v *Variables) Child() *Variables {
	child := NewVariables()
	child.parent = v
	return child
}

// Inject writes an engine or iteration value without guarding.
func (v *Variables) Inject(name string, value any, source Source) {
	if _, exists := v.values[name]; !exists {
		v.order = append(v.order, name)
	}
	v.values[name] = value
	v.sources[name] = source
}

// Get looks name up in this scope and its parents.
func (v *Variables) Get(name string) (any, bool) {
	for s := v; s != nil; s = s.parent {
		if value, ok := s.values[name]; ok {
			return value, true
		}
	}
	return nil, false
}

func (v *Variables) source(name string) (Source, bool) {
	for s := v; s != nil; s = s.parent {
		if src, ok := s.sources[name]; ok {
			return src, true
		}
	}
	return 0, false
}

// Map flattens the visible values into a new map; inner scopes win.
func (v *Variables) Map() map[string]any {
	out := make(map[string]any)
	if v == nil {
		return out
	}
	if v.parent != nil {
		maps.Copy(out, v.parent.Map())
	}
	maps.Copy(out, v.values)
	return out
}

// Names lists names of this scope in write order.
func (v *Variables) Names() []string {
	return append([]string(nil), v.order...)
}

// Guard rejects user supplied names that collide with reserved names or with
// names already written in the render.
type Guard struct {
	reserved *ReservedNames
}

// NewGuard builds a guard over reserved.
func NewGuard(reserved *ReservedNames) Guard {
	return Guard{reserved: reserved}
}

// CheckRegisteredData validates a name registered explicitly by the caller.
func (g Guard) CheckRegisteredData(name string, vars *Variables) error {
	return g.check(name, SourceData, vars)
}

// CheckFormProperty validates a form field name exported to the template.
func (g Guard) CheckFormProperty(name string, vars *Variables) error {
	return g.check(name, SourceForm, vars)
}

func (g Guard) check(name string, incoming Source, vars *Variables) error {
	if g.reserved != nil && g.reserved.Contains(name) {
		return &ReservedWordConflictError{
			Name:       name,
			Source:     incoming,
			Variables:  vars.Map(),
			Suggestion: fmt.Sprintf("rename the %s entry %q; reserved names are %v", incoming, name, g.reserved.Names()),
		}
	}
	if existing, ok := vars.source(name); ok {
		return &DataConflictError{
			Name:       name,
			Existing:   existing,
			Incoming:   incoming,
			Variables:  vars.Map(),
			Suggestion: fmt.Sprintf("rename either the %s or the %s entry %q", existing, incoming, name),
		}
	}
	return nil
}

// RegisterData guards and writes one explicitly registered value.
func (g Guard) RegisterData(vars *Variables, name string, value any) error {
	if err := g.CheckRegisteredData(name, vars); err != nil {
		return err
	}
	vars.Inject(name, value, SourceData)
	return nil
}

// RegisterForm guards every form field before writing any of them, so a
// conflicting form leaves vars untouched.
func (g Guard) RegisterForm(vars *Variables, fields []formschema.Value) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if err := g.CheckFormProperty(field.Name, vars); err != nil {
			return err
		}
		if _, dup := seen[field.Name]; dup {
			return &DataConflictError{
				Name:       field.Name,
				Existing:   SourceForm,
				Incoming:   SourceForm,
				Variables:  vars.Map(),
				Suggestion: fmt.Sprintf("the form declares %q twice", field.Name),
			}
		}
		seen[field.Name] = struct{}{}
	}
	for _, field := range fields {
		vars.Inject(field.Name, field.Value, SourceForm)
	}
	return nil
}
