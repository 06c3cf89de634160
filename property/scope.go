package property

import (
	"slices"

	"github.com/hashicorp/go-multierror"
)

// Scope owns the handles of every cell created while it was open, typically
// everything one instance node built while rendering. Dropping the scope
// drops those handles; a cell survives only if it was cloned out of the
// scope.
type Scope struct {
	tbl     *Table
	handles []*Erased
	dropped bool
}

func (t *Table) StartScope() {
	t.scopes = append(t.scopes, &Scope{tbl: t})
}

// EndScope closes the innermost scope and hands it to the caller, who must
// Drop it once the cells may go away.
func (t *Table) EndScope() *Scope {
	n := len(t.scopes)
	if n == 0 {
		panic("property: EndScope without StartScope")
	}
	s := t.scopes[n-1]
	t.scopes = t.scopes[:n-1]
	return s
}

// RunInScope runs f with a fresh scope open. The scope is closed even if f
// panics.
func (t *Table) RunInScope(f func()) (s *Scope) {
	t.StartScope()
	defer func() {
		s = t.EndScope()
	}()
	f()
	return nil
}

// Len reports how many handles the scope still owns.
func (s *Scope) Len() int {
	n := 0
	for _, h := range s.handles {
		if !h.dropped {
			n++
		}
	}
	return n
}

// Drop drops the owned handles, newest first. Handles the caller already
// dropped are skipped. Handles that fail to drop stay owned by the scope and
// every failure is reported, so Drop can be retried.
func (s *Scope) Drop() error {
	if s.dropped {
		return ErrHandleReleased
	}
	var (
		result *multierror.Error
		failed []*Erased
	)
	for i := len(s.handles) - 1; i >= 0; i-- {
		h := s.handles[i]
		if h.dropped {
			continue
		}
		if err := h.TryDrop(); err != nil {
			result = multierror.Append(result, err)
			failed = append(failed, h)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		slices.Reverse(failed)
		s.handles = failed
		return err
	}
	s.dropped = true
	s.handles = nil
	return nil
}
