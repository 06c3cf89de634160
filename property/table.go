package property

import (
	"log/slog"
	"reflect"
)

const noDebugName = "<no debug name>"

type kind uint8

const (
	kindLiteral kind = iota
	kindComputed
)

func (k kind) String() string {
	switch k {
	case kindLiteral:
		return "literal"
	case kindComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// record is the payload of a live cell.
type record struct {
	value any
	typ   reflect.Type
	kind  kind

	// Only set for computed cells.
	evaluator func() any

	// A literal is only ever dirty while a transition is running.
	dirty bool

	// Cells this one reads from. For literals this only ever holds the time
	// cell while a transition is running.
	dependencies []ID
	// Cells that read from this one.
	subscribers []ID

	transition    transitioner
	subscriptions []subscription
}

type entry struct {
	gen      uint32
	live     bool
	refCount int
	// 0 free, >0 shared readers, -1 exclusively held
	borrow int
	label  string
	rec    record
}

// Stats counts the work a Table has done since it was created.
type Stats struct {
	Cells        int
	Evaluations  uint64
	Propagations uint64
	Visits       uint64
	DirtyMarks   uint64
}

// Table owns every cell of one reactive universe. It is not safe for
// concurrent use; independent universes use independent tables.
type Table struct {
	name   string
	log    *slog.Logger
	strict bool

	// pointers so an entry stays put while the slice grows under an evaluator
	entries []*entry
	free    []uint32
	live    int

	frames  []*evalFrame
	scopes  []*Scope
	time    *Property[uint64]
	nextSub SubscriptionID
	stats   Stats
}

type Option func(*Table)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.log = logger
		}
	}
}

// WithStrictReads makes every evaluation verify that the cells it read are a
// subset of the dependencies it declared.
func WithStrictReads(strict bool) Option {
	return func(t *Table) {
		t.strict = strict
	}
}

func WithName(name string) Option {
	return func(t *Table) {
		t.name = name
	}
}

func NewTable(opts ...Option) *Table {
	t := &Table{
		name: "properties",
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("table", t.name)
	return t
}

func (t *Table) Name() string {
	return t.name
}

// Len reports the number of live cells.
func (t *Table) Len() int {
	return t.live
}

func (t *Table) Stats() Stats {
	s := t.stats
	s.Cells = t.live
	return s
}

// Label returns the debug label of a cell for diagnostics.
func (t *Table) Label(id ID) string {
	e, err := t.lookup(id)
	if err != nil {
		return "<removed>"
	}
	if e.label == "" {
		return noDebugName
	}
	return e.label
}

func (t *Table) lookup(id ID) (*entry, error) {
	if id.gen == 0 || int(id.index) >= len(t.entries) {
		return nil, ErrMissingEntry
	}
	e := t.entries[id.index]
	if !e.live || e.gen != id.gen {
		return nil, ErrMissingEntry
	}
	return e, nil
}

func (t *Table) fail(op string, id ID, err error) *CellError {
	return &CellError{
		Op:    op,
		ID:    id,
		Label: t.Label(id),
		Err:   err,
	}
}

// withShared runs f with read access to the record behind id.
func (t *Table) withShared(id ID, op string, f func(r *record) error) error {
	e, err := t.lookup(id)
	if err != nil {
		return t.fail(op, id, err)
	}
	if e.borrow < 0 {
		return t.fail(op, id, ErrBorrowConflict)
	}
	e.borrow++
	err = f(&e.rec)
	e.borrow--
	if err != nil {
		return t.fail(op, id, err)
	}
	return nil
}

// withExclusive runs f with write access to the record behind id. f must not
// call back into the same record.
func (t *Table) withExclusive(id ID, op string, f func(r *record) error) error {
	e, err := t.lookup(id)
	if err != nil {
		return t.fail(op, id, err)
	}
	if e.borrow != 0 {
		return t.fail(op, id, ErrBorrowConflict)
	}
	e.borrow = -1
	err = f(&e.rec)
	e.borrow = 0
	if err != nil {
		return t.fail(op, id, err)
	}
	return nil
}

func (t *Table) alloc() (ID, *entry) {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		e := t.entries[idx]
		return ID{index: idx, gen: e.gen}, e
	}
	e := &entry{gen: 1}
	t.entries = append(t.entries, e)
	return ID{index: uint32(len(t.entries) - 1), gen: 1}, e
}

// create inserts a cell and wires it as a subscriber of each dependency.
func (t *Table) create(value any, typ reflect.Type, k kind, evaluator func() any, deps []Dependency, label string) (ID, error) {
	depIDs, err := t.resolveDependencies(deps)
	if err != nil {
		return ID{}, err
	}

	id, e := t.alloc()
	e.live = true
	e.refCount = 1
	e.borrow = 0
	e.label = label
	e.rec = record{
		value:        value,
		typ:          typ,
		kind:         k,
		evaluator:    evaluator,
		dirty:        k == kindComputed,
		dependencies: depIDs,
	}
	t.live++
	t.connect(id, depIDs)

	t.log.Debug("cell created", "id", id, "label", label, "kind", k, "dependencies", len(depIDs))
	return id, nil
}

// handle wraps a freshly created cell. The innermost open scope takes
// ownership of it.
func (t *Table) handle(id ID) *Erased {
	h := &Erased{tbl: t, id: id}
	if n := len(t.scopes); n > 0 {
		s := t.scopes[n-1]
		s.handles = append(s.handles, h)
	}
	return h
}

func (t *Table) resolveDependencies(deps []Dependency) ([]ID, error) {
	if len(deps) == 0 {
		return nil, nil
	}
	ids := make([]ID, 0, len(deps))
	for _, dep := range deps {
		tbl, id := dep.cell()
		if tbl != t {
			return nil, t.fail("create", id, ErrForeignTable)
		}
		if _, err := t.lookup(id); err != nil {
			return nil, t.fail("create", id, err)
		}
		ids = append(ids, id)
	}
	return uniqueIDs(ids), nil
}

func (t *Table) retain(id ID) error {
	e, err := t.lookup(id)
	if err != nil {
		return t.fail("clone", id, err)
	}
	e.refCount++
	return nil
}

// release drops one reference and removes the cell when none are left.
func (t *Table) release(id ID) error {
	e, err := t.lookup(id)
	if err != nil {
		return t.fail("drop", id, err)
	}
	if e.refCount > 1 {
		e.refCount--
		return nil
	}
	return t.remove(id)
}

// remove deletes a cell and scrubs both directions of every edge touching
// it.
func (t *Table) remove(id ID) error {
	e, err := t.lookup(id)
	if err != nil {
		return t.fail("remove", id, err)
	}
	if e.borrow != 0 {
		return t.fail("remove", id, ErrBorrowConflict)
	}
	for _, sub := range e.rec.subscribers {
		if se, err := t.lookup(sub); err == nil {
			se.rec.dependencies = removeID(se.rec.dependencies, id)
		}
	}
	t.disconnect(id, e.rec.dependencies)

	t.log.Debug("cell removed", "id", id, "label", e.label)

	e.live = false
	e.refCount = 0
	e.label = ""
	e.rec = record{}
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	t.free = append(t.free, id.index)
	t.live--
	return nil
}

func (t *Table) typeOf(id ID) (reflect.Type, error) {
	var typ reflect.Type
	err := t.withShared(id, "type", func(r *record) error {
		typ = r.typ
		return nil
	})
	return typ, err
}
