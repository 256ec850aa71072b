package directive

import "strings"

// ResolveFieldName computes the submission field name for a property
// reference given the enclosing iteration frames. It is pure: the same input
// and stack always yield the same name.
//
// References whose first segment is not bound by any frame are returned
// unchanged rather than rejected.
func ResolveFieldName(raw string, stack *IterationStack) string {
	raw = strings.TrimSpace(raw)

	head, rest, dotted := strings.Cut(raw, ".")
	if dotted {
		frame, ok := stack.FindByIterVar(strings.TrimSpace(head))
		if !ok {
			return raw
		}
		return frame.PathPrefix + "." + rest
	}

	if stack.Depth() == 0 {
		return raw
	}
	if frame, ok := stack.FindByIterVar(raw); ok {
		return frame.PathPrefix
	}
	return raw
}
