package classification

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	AliasKeys       map[string]string             `json:"aliasKeys" yaml:"aliasKeys"`
	Classifications map[string]classificationFile `json:"classifications" yaml:"classifications"`
}

type classificationFile struct {
	Members []Member `json:"members" yaml:"members"`
}

// LoadFS walks fsys and registers every classification defined in JSON/YAML
// files. A nil filesystem yields an empty registry.
func LoadFS(fsys fs.FS) (*Registry, error) {
	registry := NewRegistry()
	if fsys == nil {
		return registry, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("classification: read %s: %w", path, err)
		}
		return registry.Load(data, path)
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// Load parses a single JSON or YAML document into the registry. source is only
// used in error messages.
func (r *Registry) Load(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}

	locales := make([]string, 0, len(doc.AliasKeys))
	for locale := range doc.AliasKeys {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if err := r.SetAliasKey(locale, doc.AliasKeys[locale]); err != nil {
			return fmt.Errorf("classification: file %s: %w", source, err)
		}
	}

	names := make([]string, 0, len(doc.Classifications))
	for name := range doc.Classifications {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(name, doc.Classifications[name].Members...); err != nil {
			return fmt.Errorf("classification: file %s: %w", source, err)
		}
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("classification: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("classification: parse %s: invalid JSON or YAML", source)
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
