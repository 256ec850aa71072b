package token

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField represents a hidden input emitted alongside the visible
// controls of a form.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// Field returns the hidden field carrying the token saved for action.
func Field(issuer Issuer, name, action string) HiddenField {
	if strings.TrimSpace(name) == "" {
		name = DefaultFieldName
	}
	value := None
	if issuer != nil {
		value = issuer.TokenFor(action)
	}
	return Hidden(name, value)
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped; later duplicates win.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		clean[key] = value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
