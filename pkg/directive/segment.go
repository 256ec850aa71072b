package directive

import "strings"

const (
	// DefaultIterVar is the iteration variable used when a value names no
	// variable.
	DefaultIterVar = "cdef"
	// StatusSuffix is appended to the iteration variable to name its status.
	StatusSuffix = "Stat"
)

// IterationSpec is a parsed "iter, status : reference" value.
type IterationSpec struct {
	IterVar   string
	StatusVar string
	Ref       string
}

// ParseIterationSpec parses raw with the engine-wide default variable names.
func ParseIterationSpec(raw string) (IterationSpec, error) {
	return parseIterationSpec(raw, DefaultIterVar)
}

func parseIterationSpec(raw, defaultIter string) (IterationSpec, error) {
	malformed := func(reason string) error {
		return &MalformedDirectiveError{Value: raw, Reason: reason}
	}

	idx := indexTopLevel(raw, ':')
	if idx < 0 {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			return IterationSpec{}, malformed("empty reference")
		}
		return IterationSpec{IterVar: defaultIter, StatusVar: defaultIter + StatusSuffix, Ref: ref}, nil
	}

	left, ref := raw[:idx], strings.TrimSpace(raw[idx+1:])
	if ref == "" {
		return IterationSpec{}, malformed("empty reference")
	}

	iterVar, statusVar, hasStatus := strings.Cut(left, ",")
	iterVar = strings.TrimSpace(iterVar)
	statusVar = strings.TrimSpace(statusVar)
	if iterVar == "" {
		return IterationSpec{}, malformed("missing iteration variable name")
	}
	if !isIdentifier(iterVar) {
		return IterationSpec{}, malformed("invalid iteration variable name " + iterVar)
	}
	if !hasStatus || statusVar == "" {
		statusVar = iterVar + StatusSuffix
	} else if !isIdentifier(statusVar) {
		return IterationSpec{}, malformed("invalid status variable name " + statusVar)
	}
	return IterationSpec{IterVar: iterVar, StatusVar: statusVar, Ref: ref}, nil
}

// indexTopLevel returns the index of the first sep that is outside quotes
// and bracket pairs, or -1.
func indexTopLevel(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if c == sep && depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// isPropertyPath reports whether s is a dotted identifier path like
// "form.items".
func isPropertyPath(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}
