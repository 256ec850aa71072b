package formschema

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI builds a map-form schema from the properties of a component
// schema ("#/components/schemas/<component>").
func FromOpenAPI(ctx context.Context, raw []byte, component string) (Schema, error) {
	if err := ctx.Err(); err != nil {
		return Schema{}, err
	}
	if len(raw) == 0 {
		return Schema{}, errors.New("formschema: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return Schema{}, fmt.Errorf("formschema: load openapi document: %w", err)
	}
	if doc.Components == nil {
		return Schema{}, fmt.Errorf("formschema: component %q not found", component)
	}

	ref, ok := doc.Components.Schemas[strings.TrimSpace(component)]
	if !ok || ref == nil || ref.Value == nil {
		return Schema{}, fmt.Errorf("formschema: component %q not found", component)
	}
	if !isObject(ref.Value.Type) && len(ref.Value.Properties) == 0 {
		return Schema{}, fmt.Errorf("formschema: component %q is not an object schema", component)
	}

	names := make([]string, 0, len(ref.Value.Properties))
	for name := range ref.Value.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Key(name))
	}
	return Schema{Name: component, Fields: fields}, nil
}

func isObject(types *openapi3.Types) bool {
	if types == nil {
		return false
	}
	return slices.Contains(types.Slice(), "object")
}
