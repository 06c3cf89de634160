package property

// Dependency names a cell of a table. Both typed properties and erased
// handles satisfy it, so heterogeneous dependency lists need no conversion.
type Dependency interface {
	cell() (*Table, ID)
}

// Erased is a strong, type-erased handle to one cell. Every handle owns one
// reference; the cell is removed when the last handle is dropped. Graph edges
// never own a cell.
type Erased struct {
	tbl     *Table
	id      ID
	dropped bool
}

func (e *Erased) cell() (*Table, ID) {
	return e.tbl, e.id
}

func (e *Erased) ID() ID {
	return e.id
}

func (e *Erased) Table() *Table {
	return e.tbl
}

func (e *Erased) Label() string {
	return e.tbl.Label(e.id)
}

func (e *Erased) Dropped() bool {
	return e.dropped
}

// Clone shares ownership of the cell.
func (e *Erased) Clone() *Erased {
	c, err := e.TryClone()
	if err != nil {
		panic(err)
	}
	return c
}

func (e *Erased) TryClone() (*Erased, error) {
	if e.dropped {
		return nil, e.tbl.fail("clone", e.id, ErrHandleReleased)
	}
	if err := e.tbl.retain(e.id); err != nil {
		return nil, err
	}
	return &Erased{tbl: e.tbl, id: e.id}, nil
}

// Drop releases this handle's reference. Dropping twice is an error.
func (e *Erased) Drop() {
	if err := e.TryDrop(); err != nil {
		panic(err)
	}
}

func (e *Erased) TryDrop() error {
	if e.dropped {
		return e.tbl.fail("drop", e.id, ErrHandleReleased)
	}
	if err := e.tbl.release(e.id); err != nil {
		return err
	}
	e.dropped = true
	return nil
}

func (e *Erased) live(op string) error {
	if e == nil {
		panic("property: nil handle")
	}
	if e.dropped {
		return e.tbl.fail(op, e.id, ErrHandleReleased)
	}
	return nil
}
