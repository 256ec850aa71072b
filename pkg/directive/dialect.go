package directive

import (
	"fmt"
	"strings"
)

// Host directive names written by the handlers and understood by the host.
const (
	HostEach        = "each"
	HostIf          = "if"
	HostName        = "name"
	HostValue       = "value"
	HostText        = "text"
	HostSelected    = "selected"
	HostClassAppend = "classappend"
	HostAttrAppend  = "attrappend"
	HostRemove      = "remove"
)

// Custom directive names.
const (
	PropertyDirective  = "property"
	ErrorsDirective    = "errors"
	OptionClsDirective = "optionCls"
	TokenDirective     = "token"
)

// Quote renders s as a string literal of the expression language. The
// language has no newline escape, so newlines become spaces.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Conditional renders the host "cond ? value" form.
func Conditional(cond, value string) string {
	return cond + " ? " + value
}

// SplitConditional splits "cond ? value" at the first top-level question
// mark. ok is false for plain expressions.
func SplitConditional(expr string) (cond, value string, ok bool) {
	idx := indexTopLevel(expr, '?')
	if idx < 0 {
		return "", strings.TrimSpace(expr), false
	}
	return strings.TrimSpace(expr[:idx]), strings.TrimSpace(expr[idx+1:]), true
}

// AttrAppend renders the host "attr=(expr)" form.
func AttrAppend(attr, expr string) string {
	return attr + "=(" + expr + ")"
}

// SplitAttrAppend parses "attr=(expr)". Several appends may be separated by
// top-level commas.
func SplitAttrAppend(raw string) ([][2]string, error) {
	var out [][2]string
	rest := strings.TrimSpace(raw)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return nil, &MalformedDirectiveError{Value: raw, Reason: "expected attr=(expression)"}
		}
		attr := strings.TrimSpace(rest[:eq])
		body := strings.TrimSpace(rest[eq+1:])
		if !strings.HasPrefix(body, "(") {
			return nil, &MalformedDirectiveError{Value: raw, Reason: fmt.Sprintf("expression for %s must be parenthesised", attr)}
		}
		end := closingParen(body)
		if end < 0 {
			return nil, &MalformedDirectiveError{Value: raw, Reason: "unbalanced parentheses"}
		}
		out = append(out, [2]string{attr, strings.TrimSpace(body[1:end])})
		rest = strings.TrimSpace(body[end+1:])
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
	}
	return out, nil
}

func closingParen(s string) int {
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
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func errorsExists(field string) string {
	return ErrorsVar + ".Exists(" + Quote(field) + ")"
}

func errorsPart(field string) string {
	return ErrorsVar + ".Part(" + Quote(field) + ")"
}

func errorsAll() string {
	return ErrorsVar + ".All()"
}

func clsList(ref string) string {
	return ClassesVar + ".List(" + Quote(ref) + ")"
}

func clsCode(iterVar string) string {
	return ClassesVar + ".Code(" + iterVar + ")"
}

func clsAlias(iterVar string) string {
	return ClassesVar + ".Alias(" + iterVar + ")"
}

func eachValue(iterVar, statusVar, iterable string) string {
	return iterVar + ", " + statusVar + " : " + iterable
}
