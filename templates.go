package formbind

import (
	"io/fs"

	"github.com/goliatone/go-formbind/pkg/renderers/vanilla"
)

// EmbeddedViews exposes the built-in fallback views so callers can copy or
// extend them without importing the renderer package directly.
func EmbeddedViews() fs.FS {
	return vanilla.ViewsFS()
}
