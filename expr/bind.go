package expr

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/propertyparty/property"
)

// Bind creates the computed property for expression id. deps name the
// symbols the compiler found in the expression; they are resolved against
// the current stack and become the declared dependencies. The evaluator sees
// a snapshot of the stack taken now.
//
// The evaluator failing or returning something other than T is a broken
// template, so the property panics when read.
func Bind[T any](props *property.Table, exprs *Table, stack *Stack, id ID, deps ...string) (*property.Property[T], error) {
	fn, err := exprs.Lookup(id)
	if err != nil {
		return nil, err
	}
	source := exprs.Source(id)
	label := fmt.Sprintf("expr#%d %s", id, source)

	seen := mapset.NewThreadUnsafeSet[string]()
	handles := make([]property.Dependency, 0, len(deps))
	for _, name := range deps {
		if !seen.Add(name) {
			continue
		}
		h, err := stack.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", label, err)
		}
		handles = append(handles, h)
	}

	snap := stack.Snapshot()
	return property.TryComputed(props, func() T {
		v, err := fn(snap)
		if err != nil {
			panic(fmt.Errorf("%s: %w", label, err))
		}
		if v == nil {
			var zero T
			return zero
		}
		t, ok := v.(T)
		if !ok {
			panic(fmt.Errorf("%s: %w: got %T", label, ErrResultType, v))
		}
		return t
	}, label, handles...)
}
