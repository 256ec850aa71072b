// Package formschema describes how the fields of a form value are read. A
// Schema is an explicit list of named accessors; it is resolved once per Go
// type and cached, so renders never walk form values reflectively.
package formschema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedForm is returned when no schema can be derived for a value.
var ErrUnsupportedForm = errors.New("formschema: unsupported form type")

// Field names one form field and reads its value.
type Field struct {
	Name string
	Get  func(form any) (any, bool)
}

// Value is a field name paired with the value read from a form.
type Value struct {
	Name  string
	Value any
}

// Schema is the ordered list of fields exported from a form.
type Schema struct {
	Name   string
	Fields []Field
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Extract reads every field from form. Fields whose accessor reports false are
// skipped.
func (s Schema) Extract(form any) []Value {
	out := make([]Value, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Get == nil {
			continue
		}
		if v, ok := f.Get(form); ok {
			out = append(out, Value{Name: f.Name, Value: v})
		}
	}
	return out
}

// Accessor builds a typed Field.
func Accessor[T any](name string, get func(T) any) Field {
	return Field{
		Name: strings.TrimSpace(name),
		Get: func(form any) (any, bool) {
			switch v := form.(type) {
			case T:
				return get(v), true
			case *T:
				if v != nil {
					return get(*v), true
				}
			}
			return nil, false
		},
	}
}

// Key builds a Field reading a key from map[string]any forms.
func Key(name string) Field {
	name = strings.TrimSpace(name)
	return Field{
		Name: name,
		Get: func(form any) (any, bool) {
			m, ok := form.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok := m[name]
			return v, ok
		},
	}
}

// Registry caches schemas per form type.
type Registry struct {
	mu      sync.RWMutex
	schemas map[reflect.Type]Schema
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[reflect.Type]Schema)}
}

// Register installs an explicit schema for T, overriding derived ones.
func Register[T any](r *Registry, fields ...Field) error {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" || f.Get == nil {
			return fmt.Errorf("formschema: %s field requires a name and accessor", typ)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("formschema: %s declares field %q twice", typ, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[typ] = Schema{Name: typ.String(), Fields: append([]Field(nil), fields...)}
	return nil
}

// For returns the schema of form. Map forms get a schema over their current
// keys and are not cached; struct types are derived once from exported
// fields and cached.
func (r *Registry) For(form any) (Schema, error) {
	if form == nil {
		return Schema{}, nil
	}
	if m, ok := form.(map[string]any); ok {
		return mapSchema(m), nil
	}

	typ := reflect.TypeOf(form)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	r.mu.RLock()
	if schema, ok := r.schemas[typ]; ok {
		r.mu.RUnlock()
		return schema, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if schema, ok := r.schemas[typ]; ok {
		return schema, nil
	}
	schema, err := deriveStruct(typ)
	if err != nil {
		return Schema{}, err
	}
	r.schemas[typ] = schema
	return schema, nil
}

func mapSchema(m map[string]any) Schema {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return MapSchema(keys...)
}

// MapSchema builds a schema reading the named keys of map[string]any forms.
func MapSchema(names ...string) Schema {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Key(name))
	}
	return Schema{Name: "map", Fields: fields}
}

func deriveStruct(typ reflect.Type) (Schema, error) {
	if typ.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnsupportedForm, typ)
	}
	var fields []Field
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name := fieldName(sf)
		if name == "" {
			continue
		}
		index := sf.Index
		fields = append(fields, Field{
			Name: name,
			Get: func(form any) (any, bool) {
				rv := reflect.ValueOf(form)
				for rv.Kind() == reflect.Pointer {
					if rv.IsNil() {
						return nil, false
					}
					rv = rv.Elem()
				}
				if rv.Type() != typ {
					return nil, false
				}
				return rv.FieldByIndex(index).Interface(), true
			},
		})
	}
	return Schema{Name: typ.String(), Fields: fields}, nil
}

func fieldName(sf reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		if raw, ok := sf.Tag.Lookup(tag); ok {
			name, _, _ := strings.Cut(raw, ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
	}
	if sf.Name == "" {
		return ""
	}
	return strings.ToLower(sf.Name[:1]) + sf.Name[1:]
}
