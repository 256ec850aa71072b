package messages

import (
	"sort"
	"strconv"
	"strings"
)

// FromPayload converts a server error payload (go-errors style JSON pointers,
// dotted or bracketed paths) into a message set keyed by submission field
// names such as "items[2].quantity". When roots is non-empty, paths whose
// first segment is not a known form field are treated as global messages so
// they are not lost.
func FromPayload(payload map[string][]string, roots ...string) *Messages {
	out := New()
	if len(payload) == 0 {
		return out
	}

	known := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		if trimmed := strings.TrimSpace(root); trimmed != "" {
			known[trimmed] = struct{}{}
		}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, rawPath := range keys {
		property := mapErrorPath(rawPath, known)
		for _, text := range payload[rawPath] {
			out.AddText(property, text)
		}
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) string {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return GlobalProperty
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return GlobalProperty
	}

	for _, variant := range [][]string{segments, dropWrapperSegments(segments)} {
		if len(variant) == 0 || isIndex(variant[0]) {
			continue
		}
		if len(known) == 0 {
			return FieldName(variant)
		}
		if _, ok := known[variant[0]]; ok {
			return FieldName(variant)
		}
	}
	return GlobalProperty
}

// FieldName joins path segments into a submission field name, rendering
// numeric segments as indexes of the preceding segment.
func FieldName(segments []string) string {
	var b strings.Builder
	for _, segment := range segments {
		if isIndex(segment) && b.Len() > 0 {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"form":       {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isIndex(segment string) bool {
	_, err := strconv.Atoi(segment)
	return err == nil
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors", GlobalProperty:
		return true
	default:
		return false
	}
}
