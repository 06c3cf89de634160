package property

import (
	"fmt"
	"reflect"
)

// Cloner lets a value hand out copies instead of sharing internal state
// with every reader.
type Cloner[T any] interface {
	Clone() T
}

// Property is the typed view of a cell.
type Property[T any] struct {
	untyped *Erased
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func Literal[T any](tbl *Table, value T) *Property[T] {
	return newLiteral(tbl, value, "")
}

func LiteralWithName[T any](tbl *Table, value T, name string) *Property[T] {
	return newLiteral(tbl, value, name)
}

func newLiteral[T any](tbl *Table, value T, name string) *Property[T] {
	id, err := tbl.create(value, typeOf[T](), kindLiteral, nil, nil, name)
	if err != nil {
		panic(err)
	}
	return &Property[T]{untyped: tbl.handle(id)}
}

// Computed creates a derived cell. The evaluator runs lazily on first read
// and again on every read after one of deps changed. The evaluator must only
// read cells listed in deps; turn on WithStrictReads to have that verified.
func Computed[T any](tbl *Table, evaluator func() T, deps ...Dependency) *Property[T] {
	return ComputedWithName(tbl, evaluator, "", deps...)
}

func ComputedWithName[T any](tbl *Table, evaluator func() T, name string, deps ...Dependency) *Property[T] {
	p, err := TryComputed(tbl, evaluator, name, deps...)
	if err != nil {
		panic(err)
	}
	return p
}

// TryComputed is Computed for callers that resolve deps at runtime and want
// a dead or foreign dependency reported instead of panicking.
func TryComputed[T any](tbl *Table, evaluator func() T, name string, deps ...Dependency) (*Property[T], error) {
	var zero T
	erased := func() any {
		return evaluator()
	}
	id, err := tbl.create(zero, typeOf[T](), kindComputed, erased, deps, name)
	if err != nil {
		return nil, err
	}
	return &Property[T]{untyped: tbl.handle(id)}, nil
}

// Typed recovers a typed property from an erased handle. The result owns a
// new reference.
func Typed[T any](e *Erased) (*Property[T], error) {
	if err := e.live("typed"); err != nil {
		return nil, err
	}
	typ, err := e.tbl.typeOf(e.id)
	if err != nil {
		return nil, err
	}
	if typ != typeOf[T]() {
		return nil, e.tbl.fail("typed", e.id, fmt.Errorf("%w: want %s, have %s", ErrTypeMismatch, typeOf[T](), typ))
	}
	c, err := e.TryClone()
	if err != nil {
		return nil, err
	}
	return &Property[T]{untyped: c}, nil
}

// Read returns the current value of any dependency handle, re-evaluating it
// if needed.
func Read[T any](d Dependency) (T, error) {
	var zero T
	if e, ok := d.(*Erased); ok {
		if err := e.live("get"); err != nil {
			return zero, err
		}
	}
	tbl, id := d.cell()
	return read[T](tbl, id)
}

func read[T any](tbl *Table, id ID) (T, error) {
	var zero T
	v, err := tbl.get(id, typeOf[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, tbl.fail("get", id, fmt.Errorf("%w: have %T", ErrTypeMismatch, v))
	}
	if c, ok := any(t).(Cloner[T]); ok {
		t = c.Clone()
	}
	return t, nil
}

func (p *Property[T]) cell() (*Table, ID) {
	return p.untyped.tbl, p.untyped.id
}

func (p *Property[T]) ID() ID {
	return p.untyped.id
}

func (p *Property[T]) Table() *Table {
	return p.untyped.tbl
}

func (p *Property[T]) Label() string {
	return p.untyped.Label()
}

func (p *Property[T]) IsComputed() bool {
	computed, err := p.TryIsComputed()
	if err != nil {
		panic(err)
	}
	return computed
}

func (p *Property[T]) TryIsComputed() (bool, error) {
	if err := p.untyped.live("kind"); err != nil {
		return false, err
	}
	computed := false
	err := p.untyped.tbl.withShared(p.untyped.id, "kind", func(r *record) error {
		computed = r.kind == kindComputed
		return nil
	})
	return computed, err
}

// Get returns the current value, re-evaluating stale computed chains first.
// Failures are programming errors and panic with a *CellError.
func (p *Property[T]) Get() T {
	v, err := p.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

func (p *Property[T]) TryGet() (T, error) {
	if err := p.untyped.live("get"); err != nil {
		var zero T
		return zero, err
	}
	return read[T](p.cell())
}

// Set overwrites a literal and marks everything downstream dirty. It cancels
// a running transition.
func (p *Property[T]) Set(value T) {
	if err := p.TrySet(value); err != nil {
		panic(err)
	}
}

func (p *Property[T]) TrySet(value T) error {
	if err := p.untyped.live("set"); err != nil {
		return err
	}
	return p.untyped.tbl.set(p.untyped.id, typeOf[T](), value)
}

// ReplaceWith makes p take on other's formula and value while keeping p's
// identity, so everything that depends on p keeps working unchanged. other
// stays owned by the caller.
func (p *Property[T]) ReplaceWith(other *Property[T]) {
	if err := p.TryReplaceWith(other); err != nil {
		panic(err)
	}
}

func (p *Property[T]) TryReplaceWith(other *Property[T]) error {
	if err := p.untyped.live("replace"); err != nil {
		return err
	}
	if err := other.untyped.live("replace"); err != nil {
		return err
	}
	if other.untyped.tbl != p.untyped.tbl {
		return p.untyped.tbl.fail("replace", other.untyped.id, ErrForeignTable)
	}
	return p.untyped.tbl.Redirect(p.untyped.id, other.untyped.id)
}

// Erase returns a type-erased handle that shares ownership with p.
func (p *Property[T]) Erase() *Erased {
	return p.untyped.Clone()
}

func (p *Property[T]) Clone() *Property[T] {
	return &Property[T]{untyped: p.untyped.Clone()}
}

func (p *Property[T]) Drop() {
	p.untyped.Drop()
}

func (p *Property[T]) TryDrop() error {
	return p.untyped.TryDrop()
}

func (p *Property[T]) String() string {
	return fmt.Sprintf("Property[%s](%s %q)", typeOf[T](), p.untyped.id, p.Label())
}

// set writes a literal value and notifies everything downstream.
func (t *Table) set(id ID, typ reflect.Type, value any) error {
	var subs []ID
	if err := t.withExclusive(id, "set", func(r *record) error {
		if r.typ != typ {
			return ErrTypeMismatch
		}
		if r.kind == kindComputed {
			return ErrSetComputed
		}
		if r.transition != nil {
			t.cancelTransition(id, r)
		}
		r.value = value
		r.dirty = false
		subs = make([]ID, len(r.subscribers))
		copy(subs, r.subscribers)
		return nil
	}); err != nil {
		return err
	}

	flipped := t.markDirty(subs)
	t.notify(append([]ID{id}, flipped...))
	return nil
}
