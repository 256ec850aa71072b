package classification

import (
	"errors"
	"slices"
)

var (
	// ErrNotFound is returned when a classification name is unknown.
	ErrNotFound = errors.New("classification: not found")
	// ErrGroupNotFound is returned when a classification exists but the group
	// is unknown or has no members.
	ErrGroupNotFound = errors.New("classification: group not found")
	// ErrMemberNotFound is returned when a code or name does not match any
	// member of a classification.
	ErrMemberNotFound = errors.New("classification: member not found")
)

// Member is one value of a classification.
type Member struct {
	Code     string            `json:"code" yaml:"code"`
	Name     string            `json:"name" yaml:"name"`
	Alias    string            `json:"alias" yaml:"alias"`
	Groups   []string          `json:"groups,omitempty" yaml:"groups,omitempty"`
	SubItems map[string]string `json:"subItems,omitempty" yaml:"subItems,omitempty"`
}

// InGroup reports whether the member carries the supplied group tag.
func (m Member) InGroup(group string) bool {
	return slices.Contains(m.Groups, group)
}

// DisplayAlias returns the sub-item stored under key when present, otherwise
// the default alias. Members without an alias fall back to their name.
func (m Member) DisplayAlias(key string) string {
	if key != "" {
		if v, ok := m.SubItems[key]; ok && v != "" {
			return v
		}
	}
	if m.Alias != "" {
		return m.Alias
	}
	if m.Name != "" {
		return m.Name
	}
	return m.Code
}

// Provider resolves classification members by name.
type Provider interface {
	Resolve(name string) ([]Member, error)
	ResolveGroup(name, group string) ([]Member, error)
}
