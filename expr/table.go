// Package expr is the producer side of compiled templates: an expression
// table mapping small integer ids to evaluators, and a dynamic scope stack
// that resolves the names an expression depends on to property cells.
package expr

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicateExpr = errors.New("expression id already registered")
	ErrUnknownExpr   = errors.New("unknown expression id")
	ErrResultType    = errors.New("expression returned the wrong type")
)

// ID is assigned at compile time to each distinct expression.
type ID uint32

// Evaluator computes an expression against the scope stack it was bound
// with.
type Evaluator func(s *Stack) (any, error)

type registered struct {
	source string
	fn     Evaluator
}

type Table struct {
	exprs map[ID]registered
}

func NewTable() *Table {
	return &Table{exprs: map[ID]registered{}}
}

// Register adds an evaluator. source is the expression text and only used
// for labels.
func (t *Table) Register(id ID, source string, fn Evaluator) error {
	if fn == nil {
		return fmt.Errorf("register expr#%d: nil evaluator", id)
	}
	if prev, ok := t.exprs[id]; ok {
		return fmt.Errorf("register expr#%d %q (have %q): %w", id, source, prev.source, ErrDuplicateExpr)
	}
	t.exprs[id] = registered{source: source, fn: fn}
	return nil
}

func (t *Table) Lookup(id ID) (Evaluator, error) {
	r, ok := t.exprs[id]
	if !ok {
		return nil, fmt.Errorf("expr#%d: %w", id, ErrUnknownExpr)
	}
	return r.fn, nil
}

func (t *Table) Source(id ID) string {
	return t.exprs[id].source
}

func (t *Table) Len() int {
	return len(t.exprs)
}

// IDs returns the registered ids in ascending order.
func (t *Table) IDs() []ID {
	ids := make([]ID, 0, len(t.exprs))
	for id := range t.exprs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
