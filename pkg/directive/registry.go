package directive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Directive is the static registration record of a custom attribute.
// Precedence orders directives on one element, highest first.
type Directive struct {
	Name           string
	Precedence     int
	RemoveOriginal bool
}

// Handler rewrites one directive occurrence.
type Handler interface {
	Handle(ctx context.Context, call *Call) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, call *Call) error

// Handle implements Handler.
func (fn HandlerFunc) Handle(ctx context.Context, call *Call) error {
	return fn(ctx, call)
}

type entry struct {
	Directive
	handler Handler
	order   int
}

// Registry maps directive names to handlers. The sorted view is compiled on
// first lookup, after which the registry is sealed.
type Registry struct {
	mu       sync.Mutex
	entries  []entry
	compiled atomic.Pointer[[]entry]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a directive. Names are unique case-insensitively.
func (r *Registry) Register(d Directive, h Handler) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" || h == nil {
		return fmt.Errorf("directive: name and handler required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.compiled.Load() != nil {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, d.Name)
	}
	for _, e := range r.entries {
		if strings.EqualFold(e.Name, d.Name) {
			return fmt.Errorf("directive: %q already registered", d.Name)
		}
	}
	r.entries = append(r.entries, entry{Directive: d, handler: h, order: len(r.entries)})
	return nil
}

// List returns the directives in processing order.
func (r *Registry) List() []Directive {
	sorted := r.sorted()
	out := make([]Directive, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.Directive)
	}
	return out
}

func (r *Registry) sorted() []entry {
	if compiled := r.compiled.Load(); compiled != nil {
		return *compiled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if compiled := r.compiled.Load(); compiled != nil {
		return *compiled
	}

	sorted := append([]entry(nil), r.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Precedence == sorted[j].Precedence {
			return sorted[i].order < sorted[j].order
		}
		return sorted[i].Precedence > sorted[j].Precedence
	})
	r.compiled.Store(&sorted)
	return sorted
}
