package classification

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// GroupDelimiter separates a classification name from a group filter, as in
// "MemberStatus.serviceAvailable".
const GroupDelimiter = "."

// AliasKeyer is implemented by providers that map locales to alias sub-items.
type AliasKeyer interface {
	AliasKey(tag language.Tag) (string, bool)
}

// Functions is the template-facing helper exported as "cls". Method names are
// the ones templates call.
type Functions struct {
	provider Provider
	aliasKey string
}

// NewFunctions binds provider to a render locale. The locale only affects
// Alias.
func NewFunctions(provider Provider, locale language.Tag) *Functions {
	fn := &Functions{provider: provider}
	if keyer, ok := provider.(AliasKeyer); ok {
		if key, found := keyer.AliasKey(locale); found {
			fn.aliasKey = key
		}
	}
	return fn
}

// SplitReference splits "Name.group" into its parts. group is empty when the
// reference carries no group suffix.
func SplitReference(ref string) (name, group string) {
	ref = strings.TrimSpace(ref)
	name, group, _ = strings.Cut(ref, GroupDelimiter)
	return strings.TrimSpace(name), strings.TrimSpace(group)
}

// List returns the members for a reference that may carry a group suffix.
func (f *Functions) List(ref string) ([]Member, error) {
	if f == nil || f.provider == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	name, group := SplitReference(ref)
	if group != "" {
		return f.provider.ResolveGroup(name, group)
	}
	return f.provider.Resolve(name)
}

// ListAll returns every member of the classification, ignoring groups.
func (f *Functions) ListAll(name string) ([]Member, error) {
	if f == nil || f.provider == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f.provider.Resolve(strings.TrimSpace(name))
}

// Code returns the code of a member. With two arguments it looks up the member
// by classification name and member name first.
func (f *Functions) Code(args ...any) (string, error) {
	switch len(args) {
	case 1:
		member, err := asMember(args[0])
		if err != nil {
			return "", err
		}
		return member.Code, nil
	case 2:
		member, err := f.NameOf(fmt.Sprint(args[0]), fmt.Sprint(args[1]))
		if err != nil {
			return "", err
		}
		return member.Code, nil
	default:
		return "", fmt.Errorf("classification: code expects 1 or 2 arguments, got %d", len(args))
	}
}

// Alias returns the locale-aware alias of a member.
func (f *Functions) Alias(value any) (string, error) {
	member, err := asMember(value)
	if err != nil {
		return "", err
	}
	key := ""
	if f != nil {
		key = f.aliasKey
	}
	return member.DisplayAlias(key), nil
}

// CodeOf finds a member by code.
func (f *Functions) CodeOf(name, code string) (Member, error) {
	members, err := f.ListAll(name)
	if err != nil {
		return Member{}, err
	}
	for _, member := range members {
		if member.Code == code {
			return member, nil
		}
	}
	return Member{}, fmt.Errorf("%w: code %q of %s", ErrMemberNotFound, code, name)
}

// NameOf finds a member by name.
func (f *Functions) NameOf(name, memberName string) (Member, error) {
	members, err := f.ListAll(name)
	if err != nil {
		return Member{}, err
	}
	for _, member := range members {
		if member.Name == memberName {
			return member, nil
		}
	}
	return Member{}, fmt.Errorf("%w: name %q of %s", ErrMemberNotFound, memberName, name)
}

func asMember(value any) (Member, error) {
	switch v := value.(type) {
	case Member:
		return v, nil
	case *Member:
		if v != nil {
			return *v, nil
		}
	}
	return Member{}, fmt.Errorf("classification: %T is not a classification member", value)
}
