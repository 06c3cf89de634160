package property

import (
	"reflect"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// evalFrame collects the cells an evaluator reads while strict reads are on.
type evalFrame struct {
	id    ID
	reads mapset.Set[ID]
}

func (t *Table) recordRead(id ID) {
	if !t.strict || len(t.frames) == 0 {
		return
	}
	t.frames[len(t.frames)-1].reads.Add(id)
}

// get brings the cell up to date and returns its value.
func (t *Table) get(id ID, typ reflect.Type) (any, error) {
	if err := t.withShared(id, "get", func(r *record) error {
		if r.typ != typ {
			return ErrTypeMismatch
		}
		return nil
	}); err != nil {
		return nil, err
	}
	t.recordRead(id)

	if err := t.update(id); err != nil {
		return nil, err
	}

	var v any
	err := t.withShared(id, "get", func(r *record) error {
		v = r.value
		return nil
	})
	return v, err
}

// peek returns the cached value without re-evaluating or recording a read.
func (t *Table) peek(id ID) (any, error) {
	var v any
	err := t.withShared(id, "peek", func(r *record) error {
		v = r.value
		return nil
	})
	return v, err
}

// update re-evaluates the cell if it is dirty. The dirty bit is cleared
// before the evaluator runs.
func (t *Table) update(id ID) error {
	var (
		evaluator     func() any
		transitioning bool
	)
	if err := t.withExclusive(id, "update", func(r *record) error {
		if !r.dirty {
			return nil
		}
		r.dirty = false
		switch r.kind {
		case kindComputed:
			evaluator = r.evaluator
		case kindLiteral:
			transitioning = r.transition != nil
		}
		return nil
	}); err != nil {
		return err
	}

	if transitioning {
		return t.stepTransition(id)
	}
	if evaluator == nil {
		return nil
	}
	return t.evaluate(id, evaluator)
}

// evaluate runs the evaluator while holding the cell exclusively, so any
// path that leads back into this cell fails with ErrBorrowConflict instead
// of recursing.
func (t *Table) evaluate(id ID, evaluator func() any) error {
	e, err := t.lookup(id)
	if err != nil {
		return t.fail("evaluate", id, err)
	}
	if e.borrow != 0 {
		return t.fail("evaluate", id, ErrBorrowConflict)
	}

	t.stats.Evaluations++
	frame := &evalFrame{id: id}
	if t.strict {
		frame.reads = mapset.NewThreadUnsafeSet[ID]()
	}

	var v any
	func() {
		completed := false
		e.borrow = -1
		t.frames = append(t.frames, frame)
		defer func() {
			t.frames = t.frames[:len(t.frames)-1]
			e.borrow = 0
			if !completed {
				// a panicking evaluator leaves the cell stale
				e.rec.dirty = true
			}
		}()
		v = evaluator()
		completed = true
	}()

	if t.strict {
		if err := t.checkReads(id, e, frame); err != nil {
			e.rec.dirty = true
			return err
		}
	}

	old := e.rec.value
	e.rec.value = v
	if !reflect.DeepEqual(old, v) {
		subs := make([]ID, len(e.rec.subscribers))
		copy(subs, e.rec.subscribers)
		t.markDirty(subs)
	}
	return nil
}

func (t *Table) checkReads(id ID, e *entry, frame *evalFrame) error {
	declared := mapset.NewThreadUnsafeSet(e.rec.dependencies...)
	extra := frame.reads.Difference(declared)
	if extra.Cardinality() == 0 {
		return nil
	}
	labels := make([]string, 0, extra.Cardinality())
	for _, read := range extra.ToSlice() {
		labels = append(labels, t.Label(read))
	}
	sort.Strings(labels)
	t.log.Warn("undeclared reads", "id", id, "label", e.label, "reads", labels)
	return t.fail("evaluate", id, &undeclaredError{labels: labels})
}

type undeclaredError struct {
	labels []string
}

func (e *undeclaredError) Error() string {
	return ErrUndeclaredDependency.Error() + ": " + strings.Join(e.labels, ", ")
}

func (e *undeclaredError) Unwrap() error {
	return ErrUndeclaredDependency
}
