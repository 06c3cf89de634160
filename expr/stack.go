package expr

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/propertyparty/property"
	"github.com/hashicorp/go-multierror"
)

var (
	ErrUnresolved    = errors.New("name not in scope")
	ErrNameCollision = errors.New("names collide in frame")
)

type binding struct {
	name   string
	handle *property.Erased
	// source is the cell handle forwards to after a rebind
	source *property.Erased
}

// Frame holds the names one node brings into scope. It owns the handles
// given to it.
type Frame struct {
	bindings map[uint64]binding
}

func NewFrame() *Frame {
	return &Frame{bindings: map[uint64]binding{}}
}

// Set binds name to h, taking ownership of h. Rebinding a name keeps the
// cell first bound to it and forwards that cell to h, so expressions already
// bound to the name follow the new value. On error the caller keeps h.
func (f *Frame) Set(name string, h *property.Erased) error {
	key := xxhash.Sum64String(name)
	prev, ok := f.bindings[key]
	if !ok {
		f.bindings[key] = binding{name: name, handle: h}
		return nil
	}
	if prev.name != name {
		return fmt.Errorf("%q and %q: %w", prev.name, name, ErrNameCollision)
	}
	if h == prev.handle || h == prev.source {
		return nil
	}
	if h.Table() != prev.handle.Table() {
		return fmt.Errorf("rebind %q: %w", name, property.ErrForeignTable)
	}
	if h.ID() == prev.handle.ID() {
		// the frame already holds a reference to this cell
		return h.TryDrop()
	}
	if err := h.Table().Forward(prev.handle.ID(), h.ID()); err != nil {
		return fmt.Errorf("rebind %q: %w", name, err)
	}
	old := prev.source
	prev.source = h
	f.bindings[key] = prev
	if old != nil {
		return old.TryDrop()
	}
	return nil
}

func (f *Frame) lookup(name string) (*property.Erased, bool) {
	b, ok := f.bindings[xxhash.Sum64String(name)]
	if !ok || b.name != name {
		return nil, false
	}
	return b.handle, true
}

func (f *Frame) Len() int {
	return len(f.bindings)
}

// Drop releases every handle the frame owns.
func (f *Frame) Drop() error {
	var result *multierror.Error
	for key, b := range f.bindings {
		for _, h := range []*property.Erased{b.handle, b.source} {
			if h == nil {
				continue
			}
			if err := h.TryDrop(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		delete(f.bindings, key)
	}
	return result.ErrorOrNil()
}

// Stack is the dynamic scope stack maintained while walking the render tree.
type Stack struct {
	frames []*Frame
}

func (s *Stack) Push(f *Frame) {
	s.frames = append(s.frames, f)
}

func (s *Stack) Pop() *Frame {
	n := len(s.frames)
	if n == 0 {
		return nil
	}
	f := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return f
}

func (s *Stack) Depth() int {
	return len(s.frames)
}

// Resolve finds name, innermost frame first. The handle stays owned by its
// frame.
func (s *Stack) Resolve(name string) (*property.Erased, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if h, ok := s.frames[i].lookup(name); ok {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnresolved)
}

// Snapshot freezes the current frame list. Later pushes and pops on s do not
// affect the snapshot; bindings set on a shared frame do.
func (s *Stack) Snapshot() *Stack {
	frames := make([]*Frame, len(s.frames))
	copy(frames, s.frames)
	return &Stack{frames: frames}
}

// Value reads the current value of name for use inside an evaluator.
func Value[T any](s *Stack, name string) (T, error) {
	h, err := s.Resolve(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return property.Read[T](h)
}
