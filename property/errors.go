package property

import (
	"errors"
	"fmt"
)

var (
	// ErrBorrowConflict is returned when a cell is accessed while it is
	// exclusively held, usually because an evaluator reached back into the
	// cell it is computing.
	ErrBorrowConflict = errors.New("cell already borrowed")
	// ErrMissingEntry is returned for an id whose cell has been removed.
	ErrMissingEntry = errors.New("cell does not exist")
	// ErrTypeMismatch is returned when a typed accessor does not match the
	// type stored in the cell.
	ErrTypeMismatch = errors.New("cell holds a different type")

	ErrCycle                = errors.New("dependency cycle")
	ErrSetComputed          = errors.New("cannot write a computed cell")
	ErrHandleReleased       = errors.New("handle already dropped")
	ErrUndeclaredDependency = errors.New("evaluator read an undeclared dependency")
	ErrForeignTable         = errors.New("cell belongs to another table")
)

// CellError ties a failure to the cell it happened on so a panic names the
// offending property.
type CellError struct {
	Op    string
	ID    ID
	Label string
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("property %s %q (%s): %v", e.Op, e.Label, e.ID, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
