package render

import (
	"context"
)

// Renderer turns a named template into bytes (HTML for the vanilla host).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, name string, options RenderOptions) ([]byte, error)
}
