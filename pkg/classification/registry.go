package classification

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Definition is a named, ordered set of members.
type Definition struct {
	Name    string
	Members []Member
}

// Registry is an in-memory Provider. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition

	aliasKeys map[language.Tag]string
	tags      []language.Tag
	matcher   language.Matcher
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		aliasKeys:   make(map[language.Tag]string),
	}
}

// Register adds a classification. Names must be unique and member codes must
// be unique within a classification.
func (r *Registry) Register(name string, members ...Member) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("classification: name required")
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("classification: name %q must not contain the group delimiter", name)
	}

	seen := make(map[string]struct{}, len(members))
	cloned := make([]Member, 0, len(members))
	for idx, member := range members {
		code := strings.TrimSpace(member.Code)
		if code == "" {
			return fmt.Errorf("classification: %s member %d has an empty code", name, idx)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("classification: %s defines duplicate code %q", name, code)
		}
		seen[code] = struct{}{}
		cloned = append(cloned, cloneMember(member, code))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[name]; exists {
		return fmt.Errorf("classification: duplicate classification %q", name)
	}
	r.definitions[name] = Definition{Name: name, Members: cloned}
	return nil
}

// SetAliasKey configures the sub-item key used as alias for the supplied
// locale (BCP 47 tag).
func (r *Registry) SetAliasKey(locale, key string) error {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return fmt.Errorf("classification: parse locale %q: %w", locale, err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("classification: alias key for %s is empty", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliasKeys[tag] = key
	r.tags = r.tags[:0]
	for t := range r.aliasKeys {
		r.tags = append(r.tags, t)
	}
	sort.Slice(r.tags, func(i, j int) bool { return r.tags[i].String() < r.tags[j].String() })
	r.matcher = language.NewMatcher(r.tags)
	return nil
}

// AliasKey returns the sub-item key configured for the closest matching
// locale. Matches below language.High confidence are ignored so that an
// unrelated locale keeps the default alias.
func (r *Registry) AliasKey(tag language.Tag) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.matcher == nil || tag == language.Und {
		return "", false
	}
	_, idx, confidence := r.matcher.Match(tag)
	if confidence < language.High {
		return "", false
	}
	return r.aliasKeys[r.tags[idx]], true
}

// Resolve returns every member of the classification in declaration order.
func (r *Registry) Resolve(name string) ([]Member, error) {
	def, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]Member(nil), def.Members...), nil
}

// ResolveGroup returns the members tagged with group. A group without any
// member is reported as not found.
func (r *Registry) ResolveGroup(name, group string) ([]Member, error) {
	def, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	var out []Member
	for _, member := range def.Members {
		if member.InGroup(group) {
			out = append(out, member)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s of %s", ErrGroupNotFound, group, name)
	}
	return out, nil
}

// Names lists registered classifications sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[strings.TrimSpace(name)]
	return def, ok
}

func cloneMember(member Member, code string) Member {
	out := member
	out.Code = code
	out.Groups = append([]string(nil), member.Groups...)
	if len(member.SubItems) > 0 {
		out.SubItems = make(map[string]string, len(member.SubItems))
		for k, v := range member.SubItems {
			out.SubItems[k] = v
		}
	}
	return out
}
