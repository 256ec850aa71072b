package config

import (
	"fmt"
	"maps"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme tokens read for the style classes.
const (
	InvalidClassToken = "forms.invalid-class"
	ErrorsClassToken  = "forms.errors-class"
)

// Styles are the classes a theme contributes.
type Styles struct {
	InvalidClass string
	ErrorsClass  string
}

// ThemeStyles reads the style tokens of a selection. Variant tokens override
// the manifest's.
func ThemeStyles(selection *theme.Selection) Styles {
	if selection == nil || selection.Manifest == nil {
		return Styles{}
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	maps.Copy(tokens, selection.Manifest.Tokens)
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		maps.Copy(tokens, variant.Tokens)
	}
	return Styles{
		InvalidClass: strings.TrimSpace(tokens[InvalidClassToken]),
		ErrorsClass:  strings.TrimSpace(tokens[ErrorsClassToken]),
	}
}

// SelectStyles resolves the configured theme through selector. A config
// without a theme name yields no styles.
func (c Config) SelectStyles(selector theme.ThemeSelector) (Styles, error) {
	if selector == nil || strings.TrimSpace(c.Theme.Name) == "" {
		return Styles{}, nil
	}
	selection, err := selector.Select(c.Theme.Name, c.Theme.Variant)
	if err != nil {
		return Styles{}, fmt.Errorf("config: select theme %q: %w", c.Theme.Name, err)
	}
	return ThemeStyles(selection), nil
}
