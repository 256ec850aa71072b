package directive

import (
	"errors"

	"github.com/goliatone/go-formbind/pkg/classification"
)

// Expander resolves classification references used by optionCls.
type Expander struct {
	provider classification.Provider
}

// NewExpander wraps provider.
func NewExpander(provider classification.Provider) Expander {
	return Expander{provider: provider}
}

// Expand resolves "Name" or "Name.group" into its ordered members.
func (x Expander) Expand(ref string) ([]classification.Member, error) {
	name, group := classification.SplitReference(ref)
	if x.provider == nil {
		return nil, &ClassificationNotFoundError{Name: name, Err: classification.ErrNotFound}
	}

	var (
		members []classification.Member
		err     error
	)
	if group != "" {
		members, err = x.provider.ResolveGroup(name, group)
	} else {
		members, err = x.provider.Resolve(name)
	}
	switch {
	case err == nil:
		return members, nil
	case errors.Is(err, classification.ErrGroupNotFound):
		return nil, &ClassificationGroupNotFoundError{Name: name, Group: group, Err: err}
	case errors.Is(err, classification.ErrNotFound):
		return nil, &ClassificationNotFoundError{Name: name, Err: err}
	default:
		return nil, err
	}
}

// SelectedExpression builds the expression deciding whether the option bound
// to iterVar is selected. Single selects compare the member code with the
// bound value; multiple selects test containment and guard against a missing
// collection.
func (x Expander) SelectedExpression(iterVar, bound string, multiple bool) string {
	code := clsCode(iterVar)
	if multiple {
		return bound + " and " + code + " in " + bound
	}
	return code + " == " + bound
}
