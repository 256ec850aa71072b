package directive

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Names the engine injects into every render.
const (
	ErrorsVar       = "errors"
	ClassesVar      = "cls"
	HandyVar        = "handy"
	AssetVersionVar = "assetVersion"
	EvalSinkVar     = "evalSink"
)

// DefaultReservedNames lists the names injected by the engine.
var DefaultReservedNames = []string{ErrorsVar, ClassesVar, HandyVar, AssetVersionVar, EvalSinkVar}

// ReservedNamesHook returns extra names an integration injects into every
// render.
type ReservedNamesHook func() []string

// ReservedNames is the set of engine names user data must not shadow. It is
// built on first use, merging the hook's names, and read-only afterwards.
type ReservedNames struct {
	mu       sync.Mutex
	names    atomic.Pointer[map[string]struct{}]
	defaults []string
	hook     ReservedNamesHook
}

// NewReservedNames constructs a lazily initialised set.
func NewReservedNames(defaults []string, hook ReservedNamesHook) *ReservedNames {
	return &ReservedNames{defaults: slices.Clone(defaults), hook: hook}
}

// Contains reports whether name is reserved.
func (r *ReservedNames) Contains(name string) bool {
	_, ok := r.load()[strings.TrimSpace(name)]
	return ok
}

// Names returns the reserved names sorted.
func (r *ReservedNames) Names() []string {
	set := r.load()
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (r *ReservedNames) load() map[string]struct{} {
	if set := r.names.Load(); set != nil {
		return *set
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if set := r.names.Load(); set != nil {
		return *set
	}

	set := make(map[string]struct{}, len(r.defaults))
	for _, name := range r.defaults {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	if r.hook != nil {
		for _, name := range r.hook() {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				set[trimmed] = struct{}{}
			}
		}
	}
	r.names.Store(&set)
	return set
}
