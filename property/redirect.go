package property

import (
	"fmt"
	"reflect"
)

const replWith = "<repl_with>"

// Redirect makes dst take over src's formula and current value while keeping
// dst's identity. Subscribers of dst are untouched and observe src's formula
// from now on. src keeps its own identity, value and subscribers.
//
// Every precondition is checked before the first edge changes, so a failed
// redirect leaves the graph exactly as it was.
func (t *Table) Redirect(dst, src ID) error {
	de, err := t.lookup(dst)
	if err != nil {
		return t.fail("redirect", dst, err)
	}
	se, err := t.lookup(src)
	if err != nil {
		return t.fail("redirect", src, err)
	}
	if de.borrow != 0 {
		return t.fail("redirect", dst, ErrBorrowConflict)
	}
	if se.borrow < 0 {
		return t.fail("redirect", src, ErrBorrowConflict)
	}
	if de.rec.typ != se.rec.typ {
		return t.fail("redirect", dst, fmt.Errorf("%w: %s <- %s", ErrTypeMismatch, de.rec.typ, se.rec.typ))
	}

	if dst == src {
		t.notify(append([]ID{dst}, t.markDirty(de.rec.subscribers)...))
		return nil
	}

	var newDeps []ID
	if se.rec.kind == kindComputed {
		newDeps = make([]ID, len(se.rec.dependencies))
		copy(newDeps, se.rec.dependencies)
	}
	for _, dep := range newDeps {
		if t.dependsOn(dep, dst) {
			return t.fail("redirect", dst, fmt.Errorf("%w: %s already depends on %q", ErrCycle, t.Label(dep), de.label))
		}
	}

	if de.rec.transition != nil {
		t.cancelTransition(dst, &de.rec)
	}

	oldLabel := t.Label(dst)
	t.disconnect(dst, de.rec.dependencies)
	de.rec.dependencies = newDeps
	t.connect(dst, newDeps)
	de.rec.kind = se.rec.kind
	de.rec.evaluator = se.rec.evaluator
	de.rec.value = se.rec.value
	de.rec.dirty = se.rec.kind == kindComputed
	if se.label != "" {
		de.label = fmt.Sprintf("%s %s %s", oldLabel, replWith, se.label)
	}

	t.log.Debug("cell redirected", "dst", dst, "src", src, "label", de.label, "dependencies", len(newDeps))

	subs := make([]ID, len(de.rec.subscribers))
	copy(subs, de.rec.subscribers)
	t.notify(append([]ID{dst}, t.markDirty(subs)...))
	return nil
}

// Forward turns dst into a computed cell that mirrors src. dst keeps its
// identity, so everything that depends on dst follows src from now on.
func (t *Table) Forward(dst, src ID) error {
	se, err := t.lookup(src)
	if err != nil {
		return t.fail("forward", src, err)
	}
	if dst == src {
		return t.fail("forward", dst, ErrCycle)
	}
	typ := se.rec.typ
	mirror, err := t.create(reflect.Zero(typ).Interface(), typ, kindComputed, func() any {
		v, err := t.get(src, typ)
		if err != nil {
			panic(err)
		}
		return v
	}, []Dependency{&Erased{tbl: t, id: src}}, se.label)
	if err != nil {
		return err
	}
	// dst takes over the mirror's formula and edges; the mirror itself goes
	defer t.release(mirror)
	return t.Redirect(dst, mirror)
}
