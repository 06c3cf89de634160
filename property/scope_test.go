package property_test

import (
	"testing"

	"github.com/delaneyj/propertyparty/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeOwnsCreatedCells(t *testing.T) {
	tbl := property.NewTable()
	outer := property.LiteralWithName(tbl, 2, "outer")

	var a, b *property.Property[int]
	s := tbl.RunInScope(func() {
		a = property.Literal(tbl, 3)
		b = property.Computed(tbl, func() int { return a.Get() * outer.Get() }, a, outer)
	})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 6, b.Get())

	require.NoError(t, s.Drop())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, tbl.Len())
	_, err := a.TryGet()
	assert.ErrorIs(t, err, property.ErrHandleReleased)

	_, subs, err := tbl.Edges(outer.ID())
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.NoError(t, tbl.Check())

	assert.ErrorIs(t, s.Drop(), property.ErrHandleReleased)
}

func TestScopeCloneSurvives(t *testing.T) {
	tbl := property.NewTable()
	var kept *property.Property[string]
	s := tbl.RunInScope(func() {
		p := property.Literal(tbl, "kept")
		kept = p.Clone()
		property.Literal(tbl, "scratch")
	})
	assert.Equal(t, 2, s.Len(), "clones are not owned by the scope")

	require.NoError(t, s.Drop())
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "kept", kept.Get())

	kept.Drop()
	assert.Equal(t, 0, tbl.Len())
}

func TestNestedScopes(t *testing.T) {
	tbl := property.NewTable()
	tbl.StartScope()
	property.Literal(tbl, 1)
	tbl.StartScope()
	property.Literal(tbl, 2)
	inner := tbl.EndScope()
	property.Literal(tbl, 3)
	outer := tbl.EndScope()

	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, 2, outer.Len())

	require.NoError(t, inner.Drop())
	assert.Equal(t, 2, tbl.Len())
	require.NoError(t, outer.Drop())
	assert.Equal(t, 0, tbl.Len())
}

func TestScopeSkipsDroppedHandles(t *testing.T) {
	tbl := property.NewTable()
	var a *property.Property[int]
	s := tbl.RunInScope(func() {
		a = property.Literal(tbl, 1)
	})
	a.Drop()
	assert.Equal(t, 0, s.Len())
	assert.NoError(t, s.Drop())
	assert.Equal(t, 0, tbl.Len())
}

func TestClockIsNotScoped(t *testing.T) {
	tbl := property.NewTable()
	s := tbl.RunInScope(func() {
		p := property.Literal(tbl, 0)
		require.NoError(t, property.EaseTo(p, 10, 10, property.Linear))
	})
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, tbl.Transitioning())

	require.NoError(t, s.Drop())
	assert.Equal(t, 1, tbl.Len(), "only the clock is left")
	assert.Equal(t, 0, tbl.Transitioning())
	tbl.SetTime(3)
	assert.Equal(t, uint64(3), tbl.Time())
	assert.NoError(t, tbl.Check())
}

func TestScopeBalancing(t *testing.T) {
	tbl := property.NewTable()
	assert.Panics(t, func() { tbl.EndScope() })

	assert.Panics(t, func() {
		tbl.RunInScope(func() {
			property.Literal(tbl, 1)
			panic("boom")
		})
	})
	// the panicking scope was closed on the way out
	assert.Panics(t, func() { tbl.EndScope() })
}

func TestScopeDropKeepsFailedHandles(t *testing.T) {
	tbl := property.NewTable()
	var (
		s         *property.Scope
		errDuring error
		a         *property.Property[int]
		b         *property.Property[int]
	)
	s = tbl.RunInScope(func() {
		a = property.Literal(tbl, 1)
		b = property.Computed(tbl, func() int {
			v := a.Get()
			if s != nil {
				// b is being evaluated, so it cannot go yet
				errDuring = s.Drop()
			}
			return v
		}, a)
	})

	assert.Equal(t, 1, b.Get())
	assert.ErrorIs(t, errDuring, property.ErrBorrowConflict)
	assert.Equal(t, 1, s.Len(), "a was dropped, b is kept for a retry")
	assert.Equal(t, 1, tbl.Len())

	require.NoError(t, s.Drop())
	assert.Equal(t, 0, tbl.Len())
	assert.NoError(t, tbl.Check())
}
