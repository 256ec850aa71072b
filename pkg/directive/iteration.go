package directive

import (
	"strconv"
	"strings"
)

// Frame is the iteration context of one iterated item.
type Frame struct {
	IterVar    string
	StatusVar  string
	PathPrefix string
	Index      int
}

// IterationStack holds the frames of the enclosing iterations. It belongs to
// a single render and is not safe for concurrent use.
type IterationStack struct {
	frames []Frame
}

// NewIterationStack returns an empty stack.
func NewIterationStack() *IterationStack {
	return &IterationStack{}
}

// Push enters an iterated item.
func (s *IterationStack) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// Pop leaves the innermost iterated item. Popping an empty stack means the
// host unbalanced Push and Pop, which is a programming error.
func (s *IterationStack) Pop() Frame {
	if len(s.frames) == 0 {
		panic("directive: pop on empty iteration stack")
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Current returns the innermost frame.
func (s *IterationStack) Current() (Frame, bool) {
	if s == nil || len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// FindByIterVar returns the nearest frame bound to name.
func (s *IterationStack) FindByIterVar(name string) (Frame, bool) {
	if s == nil {
		return Frame{}, false
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].IterVar == name {
			return s.frames[i], true
		}
	}
	return Frame{}, false
}

// Depth returns the number of frames.
func (s *IterationStack) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// NewFrame builds the frame for item index of an iteration over source.
//
// When source is a property path rooted at an enclosing iteration variable,
// the prefix continues that frame's path ("order.lines" inside order[1]
// becomes "orders[1].lines[i]"). Other property paths contribute their last
// segment ("form.items" becomes "items[i]"), nested under the current frame
// if there is one. Anything else falls back to the iteration variable name.
func NewFrame(stack *IterationStack, iterVar, statusVar, source string, index int) Frame {
	if statusVar == "" {
		statusVar = iterVar + StatusSuffix
	}
	suffix := "[" + strconv.Itoa(index) + "]"
	source = strings.TrimSpace(source)

	var base string
	switch {
	case isPropertyPath(source):
		root, _, _ := strings.Cut(source, ".")
		if _, bound := stack.FindByIterVar(root); bound {
			base = ResolveFieldName(source, stack)
			break
		}
		name := source
		if i := strings.LastIndex(source, "."); i >= 0 {
			name = source[i+1:]
		}
		base = joinPrefix(stack, name)
	default:
		base = joinPrefix(stack, iterVar)
	}

	return Frame{
		IterVar:    iterVar,
		StatusVar:  statusVar,
		PathPrefix: base + suffix,
		Index:      index,
	}
}

func joinPrefix(stack *IterationStack, name string) string {
	if current, ok := stack.Current(); ok && current.PathPrefix != "" {
		return current.PathPrefix + "." + name
	}
	return name
}
