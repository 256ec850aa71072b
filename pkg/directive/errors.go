package directive

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrMalformedDirective reports a directive value that cannot be parsed.
	ErrMalformedDirective = errors.New("directive: malformed directive")
	// ErrReservedWordConflict reports a user name that shadows an engine name.
	ErrReservedWordConflict = errors.New("directive: reserved word conflict")
	// ErrDataConflict reports two user supplied values under the same name.
	ErrDataConflict = errors.New("directive: data conflict")
	// ErrClassificationNotFound reports an unknown classification reference.
	ErrClassificationNotFound = errors.New("directive: classification not found")
	// ErrClassificationGroupNotFound reports an unknown classification group.
	ErrClassificationGroupNotFound = errors.New("directive: classification group not found")
	// ErrTokenPlacement reports a token directive on a disallowed element.
	ErrTokenPlacement = errors.New("directive: token placement")
	// ErrUnresolvedExpression reports a host expression that failed to evaluate.
	ErrUnresolvedExpression = errors.New("directive: unresolved expression")
	// ErrRegistrySealed is returned when registering after the first lookup.
	ErrRegistrySealed = errors.New("directive: registry sealed")
)

// MalformedDirectiveError is returned when a directive value has the wrong
// shape.
type MalformedDirectiveError struct {
	TemplatePath string
	Attribute    string
	Value        string
	Reason       string
}

func (e *MalformedDirectiveError) Error() string {
	var b strings.Builder
	b.WriteString("directive: malformed ")
	if e.Attribute != "" {
		b.WriteString(e.Attribute + "=")
	}
	fmt.Fprintf(&b, "%q", e.Value)
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	writeTemplate(&b, e.TemplatePath)
	return b.String()
}

// Is matches ErrMalformedDirective.
func (e *MalformedDirectiveError) Is(target error) bool {
	return target == ErrMalformedDirective
}

// ReservedWordConflictError is returned when a data or form name collides
// with a name injected by the engine.
type ReservedWordConflictError struct {
	Name       string
	Source     Source
	Variables  map[string]any
	Suggestion string
}

func (e *ReservedWordConflictError) Error() string {
	return fmt.Sprintf("directive: %s name %q is reserved by the engine (variables: %s): %s",
		e.Source, e.Name, variableNames(e.Variables), e.Suggestion)
}

// Is matches ErrReservedWordConflict.
func (e *ReservedWordConflictError) Is(target error) bool {
	return target == ErrReservedWordConflict
}

// DataConflictError is returned when a name was already written during the
// current render.
type DataConflictError struct {
	Name       string
	Existing   Source
	Incoming   Source
	Variables  map[string]any
	Suggestion string
}

func (e *DataConflictError) Error() string {
	return fmt.Sprintf("directive: %s name %q already registered as %s (variables: %s): %s",
		e.Incoming, e.Name, e.Existing, variableNames(e.Variables), e.Suggestion)
}

// Is matches ErrDataConflict.
func (e *DataConflictError) Is(target error) bool {
	return target == ErrDataConflict
}

// ClassificationNotFoundError is returned for unknown classification names.
type ClassificationNotFoundError struct {
	TemplatePath string
	Attribute    string
	Value        string
	Name         string
	Err          error
}

func (e *ClassificationNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "directive: classification %q not found", e.Name)
	writeDirective(&b, e.Attribute, e.Value)
	writeTemplate(&b, e.TemplatePath)
	return b.String()
}

// Is matches ErrClassificationNotFound.
func (e *ClassificationNotFoundError) Is(target error) bool {
	return target == ErrClassificationNotFound
}

func (e *ClassificationNotFoundError) Unwrap() error { return e.Err }

// ClassificationGroupNotFoundError is returned for unknown group suffixes.
type ClassificationGroupNotFoundError struct {
	TemplatePath string
	Attribute    string
	Value        string
	Name         string
	Group        string
	Err          error
}

func (e *ClassificationGroupNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "directive: classification group %q of %q not found", e.Group, e.Name)
	writeDirective(&b, e.Attribute, e.Value)
	writeTemplate(&b, e.TemplatePath)
	return b.String()
}

// Is matches ErrClassificationGroupNotFound.
func (e *ClassificationGroupNotFoundError) Is(target error) bool {
	return target == ErrClassificationGroupNotFound
}

func (e *ClassificationGroupNotFoundError) Unwrap() error { return e.Err }

// TokenPlacementError is returned when the token directive is not placed on
// an <input type="hidden">.
type TokenPlacementError struct {
	TemplatePath string
	Attribute    string
	Tag          string
	InputType    string
}

func (e *TokenPlacementError) Error() string {
	var b strings.Builder
	if e.Tag != "input" {
		fmt.Fprintf(&b, "directive: token attribute is only allowed on input elements, found <%s>", e.Tag)
	} else {
		fmt.Fprintf(&b, "directive: token attribute requires type=\"hidden\", found type=%q", e.InputType)
	}
	if e.Attribute != "" {
		b.WriteString(" (" + e.Attribute + ")")
	}
	writeTemplate(&b, e.TemplatePath)
	return b.String()
}

// Is matches ErrTokenPlacement.
func (e *TokenPlacementError) Is(target error) bool {
	return target == ErrTokenPlacement
}

// UnresolvedExpressionError wraps a host evaluation failure with the template
// and attribute it came from.
type UnresolvedExpressionError struct {
	TemplatePath string
	Attribute    string
	Expression   string
	Variables    map[string]any
	Err          error
}

func (e *UnresolvedExpressionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "directive: cannot evaluate %q", e.Expression)
	if e.Attribute != "" {
		b.WriteString(" in " + e.Attribute)
	}
	writeTemplate(&b, e.TemplatePath)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Is matches ErrUnresolvedExpression.
func (e *UnresolvedExpressionError) Is(target error) bool {
	return target == ErrUnresolvedExpression
}

func (e *UnresolvedExpressionError) Unwrap() error { return e.Err }

func writeTemplate(b *strings.Builder, path string) {
	if path != "" {
		b.WriteString(" (template " + path + ")")
	}
}

func variableNames(vars map[string]any) string {
	return "[" + strings.Join(slices.Sorted(maps.Keys(vars)), ", ") + "]"
}

func writeDirective(b *strings.Builder, attr, value string) {
	switch {
	case attr != "" && value != "":
		fmt.Fprintf(b, " in %s=%q", attr, value)
	case attr != "":
		b.WriteString(" in " + attr)
	}
}
