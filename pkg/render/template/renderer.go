package template

import (
	"io"
)

// TemplateRenderer renders named templates or inline template content. The
// vanilla host uses it for the fallback error view.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}

// ExpressionEvaluator evaluates one host directive expression against the
// variables visible at an element.
type ExpressionEvaluator interface {
	Eval(expr string, vars map[string]any) (any, error)
}
