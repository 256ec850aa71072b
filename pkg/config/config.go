// Package config loads the settings of a formbind engine from a JSON or YAML
// document and converts them into directive and renderer options.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/directive"
)

// Config describes one engine.
type Config struct {
	// Prefix of the custom directives ("fg").
	Prefix string `json:"prefix" yaml:"prefix"`
	// HostPrefix of the host directives ("tpl").
	HostPrefix   string `json:"hostPrefix" yaml:"hostPrefix"`
	InvalidClass string `json:"invalidClass" yaml:"invalidClass"`
	ErrorsClass  string `json:"errorsClass" yaml:"errorsClass"`
	IterVar      string `json:"iterVar" yaml:"iterVar"`
	TokenField   string `json:"tokenField" yaml:"tokenField"`
	// Reserved lists extra names the application injects into every render.
	Reserved []string `json:"reserved" yaml:"reserved"`
	// Classifications is a directory of classification definition files.
	Classifications string `json:"classifications" yaml:"classifications"`
	Templates       string `json:"templates" yaml:"templates"`
	FallbackView    string `json:"fallbackView" yaml:"fallbackView"`
	Theme           Theme  `json:"theme" yaml:"theme"`
}

// Theme selects the go-theme manifest and variant supplying style classes.
type Theme struct {
	Name    string `json:"name" yaml:"name"`
	Variant string `json:"variant" yaml:"variant"`
}

// Load reads the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads the config file at path inside fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a JSON or YAML document. source is only used in error
// messages.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err == nil {
		return cfg, cfg.validate(source)
	}

	cfg = Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return cfg, cfg.validate(source)
}

func (c Config) validate(source string) error {
	if c.Prefix != "" && c.HostPrefix != "" && strings.EqualFold(c.Prefix, c.HostPrefix) {
		return fmt.Errorf("config: file %s: prefix and hostPrefix must differ, both are %q", source, c.Prefix)
	}
	for _, name := range c.Reserved {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("config: file %s: reserved names must not be blank", source)
		}
	}
	return nil
}

// DirectiveOptions converts the settings into dispatcher options. Empty
// settings keep the dispatcher defaults.
func (c Config) DirectiveOptions() []directive.Option {
	opts := []directive.Option{
		directive.WithPrefix(c.Prefix),
		directive.WithHostPrefix(c.HostPrefix),
		directive.WithInvalidClass(c.InvalidClass),
		directive.WithErrorsClass(c.ErrorsClass),
		directive.WithDefaultIterVar(c.IterVar),
		directive.WithTokenFieldName(c.TokenField),
	}
	if len(c.Reserved) > 0 {
		names := append([]string(nil), c.Reserved...)
		opts = append(opts, directive.WithReservedNamesHook(func() []string { return names }))
	}
	return opts
}

// WithStyles fills the style classes the config leaves empty.
func (c Config) WithStyles(styles Styles) Config {
	if c.InvalidClass == "" {
		c.InvalidClass = styles.InvalidClass
	}
	if c.ErrorsClass == "" {
		c.ErrorsClass = styles.ErrorsClass
	}
	return c
}
