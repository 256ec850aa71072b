package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// DefaultFallbackView names the built-in error view.
const DefaultFallbackView = "error"

// ViewsFS exposes the embedded views (the default fallback error view) so
// callers can copy or override them.
func ViewsFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
