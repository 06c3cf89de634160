package property_test

import (
	"testing"

	"github.com/delaneyj/propertyparty/property"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idCmp = []cmp.Option{
	cmp.Comparer(func(a, b property.ID) bool { return a == b }),
	cmpopts.EquateEmpty(),
}

type edges struct {
	Deps, Subs []property.ID
}

func snapshotEdges(t *testing.T, tbl *property.Table, ps ...*property.Property[int]) map[string]edges {
	t.Helper()
	out := map[string]edges{}
	for _, p := range ps {
		deps, subs, err := tbl.Edges(p.ID())
		require.NoError(t, err)
		out[p.Label()] = edges{Deps: deps, Subs: subs}
	}
	return out
}

func TestEdgesAreSymmetric(t *testing.T) {
	/*
	   a   b
	   |\ /
	   | c
	   |/
	   d
	*/
	tbl := property.NewTable()
	a := property.LiteralWithName(tbl, 1, "a")
	b := property.LiteralWithName(tbl, 2, "b")
	c := property.ComputedWithName(tbl, func() int { return a.Get() + b.Get() }, "c", a, b, a)
	d := property.ComputedWithName(tbl, func() int { return a.Get() + c.Get() }, "d", a, c)

	want := map[string]edges{
		"a": {Subs: []property.ID{c.ID(), d.ID()}},
		"b": {Subs: []property.ID{c.ID()}},
		"c": {Deps: []property.ID{a.ID(), b.ID()}, Subs: []property.ID{d.ID()}},
		"d": {Deps: []property.ID{a.ID(), c.ID()}},
	}
	got := snapshotEdges(t, tbl, a, b, c, d)
	if diff := cmp.Diff(want, got, idCmp...); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, d.Get())
	require.NoError(t, tbl.Check())

	c.Drop()
	want = map[string]edges{
		"a": {Subs: []property.ID{d.ID()}},
		"b": {},
		"d": {Deps: []property.ID{a.ID()}},
	}
	got = snapshotEdges(t, tbl, a, b, d)
	if diff := cmp.Diff(want, got, idCmp...); diff != "" {
		t.Fatalf("edges after drop mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, tbl.Check())
}

func TestPropagationTerminates(t *testing.T) {
	/*
	     L
	    / \
	   A   B
	    \ /
	     C
	*/
	tbl := property.NewTable()
	l := property.Literal(tbl, 2)
	a := property.Computed(tbl, func() int { return l.Get() * 5 }, l)
	b := property.Computed(tbl, func() int { return l.Get() + 1 }, l)
	c := property.Computed(tbl, func() int { return a.Get() * b.Get() }, a, b)
	require.Equal(t, 30, c.Get())

	before := tbl.Stats()
	l.Set(3)
	first := tbl.Stats()
	assert.EqualValues(t, 3, first.DirtyMarks-before.DirtyMarks, "A, B and C flip once each")
	assert.EqualValues(t, 4, first.Visits-before.Visits, "C is reached twice but expanded once")

	// everything downstream is already dirty, so nothing is expanded again
	l.Set(4)
	second := tbl.Stats()
	assert.EqualValues(t, 0, second.DirtyMarks-first.DirtyMarks)
	assert.EqualValues(t, 2, second.Visits-first.Visits)

	assert.Equal(t, 20*5, c.Get())
	assert.EqualValues(t, 3, tbl.Stats().Evaluations-second.Evaluations)
}

func TestPropagationOnWideGraph(t *testing.T) {
	// every layer depends on every cell of the previous layer
	const width, depth = 8, 6
	tbl := property.NewTable()
	src := property.Literal(tbl, 1)
	prev := []*property.Property[int]{src}
	for l := 0; l < depth; l++ {
		deps := make([]property.Dependency, len(prev))
		for i, p := range prev {
			deps[i] = p
		}
		layer := make([]*property.Property[int], width)
		for i := range layer {
			inputs := prev
			layer[i] = property.Computed(tbl, func() int {
				sum := 0
				for _, in := range inputs {
					sum += in.Get()
				}
				return sum
			}, deps...)
		}
		prev = layer
	}
	for _, p := range prev {
		p.Get()
	}

	before := tbl.Stats()
	src.Set(2)
	after := tbl.Stats()
	assert.EqualValues(t, width*depth, after.DirtyMarks-before.DirtyMarks)
	// the first layer is reached once from src, every other cell once from
	// each cell of the layer above it
	assert.EqualValues(t, width+width*width*(depth-1), after.Visits-before.Visits)
	require.NoError(t, tbl.Check())
}

func TestRedirectRejectsCycles(t *testing.T) {
	/*
	   X
	   |
	   D
	   |
	   E
	*/
	tbl := property.NewTable()
	x := property.LiteralWithName(tbl, 1, "x")
	d := property.ComputedWithName(tbl, func() int { return x.Get() * 2 }, "d", x)
	e := property.ComputedWithName(tbl, func() int { return d.Get() + 1 }, "e", d)
	assert.Equal(t, 3, e.Get())

	before := snapshotEdges(t, tbl, x, d, e)

	assert.ErrorIs(t, x.TryReplaceWith(d), property.ErrCycle)
	assert.ErrorIs(t, x.TryReplaceWith(e), property.ErrCycle)
	assert.ErrorIs(t, d.TryReplaceWith(e), property.ErrCycle)

	after := snapshotEdges(t, tbl, x, d, e)
	if diff := cmp.Diff(before, after, idCmp...); diff != "" {
		t.Fatalf("failed redirect changed the graph (-before +after):\n%s", diff)
	}
	assert.False(t, x.IsComputed())
	assert.Equal(t, "x", x.Label())
	assert.NoError(t, tbl.Check())

	// pointing downstream cells at upstream formulas is fine
	require.NoError(t, e.TryReplaceWith(d))
	x.Set(5)
	assert.Equal(t, 10, e.Get())
	assert.NoError(t, tbl.Check())
}

func TestRedirectTypeMismatch(t *testing.T) {
	tbl := property.NewTable()
	n := property.Literal(tbl, 1)
	s := property.Literal(tbl, "one")
	assert.ErrorIs(t, tbl.Redirect(n.ID(), s.ID()), property.ErrTypeMismatch)
	assert.Equal(t, 1, n.Get())
}

func TestRedirectWhileEvaluating(t *testing.T) {
	tbl := property.NewTable()
	a := property.Literal(tbl, 1)
	b := property.Literal(tbl, 2)
	var errDuring error
	var c *property.Property[int]
	c = property.Computed(tbl, func() int {
		errDuring = c.TryReplaceWith(b)
		return a.Get()
	}, a)

	assert.Equal(t, 1, c.Get())
	assert.ErrorIs(t, errDuring, property.ErrBorrowConflict)
	assert.True(t, c.IsComputed())
}

func TestStrictReads(t *testing.T) {
	tbl := property.NewTable(property.WithStrictReads(true))
	a := property.LiteralWithName(tbl, 1, "a")
	b := property.LiteralWithName(tbl, 2, "b")
	declared := property.ComputedWithName(tbl, func() int { return a.Get() * 10 }, "declared", a)
	sneaky := property.ComputedWithName(tbl, func() int { return declared.Get() + b.Get() }, "sneaky", declared)

	_, err := sneaky.TryGet()
	require.ErrorIs(t, err, property.ErrUndeclaredDependency)
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), `"sneaky"`)

	// the cell stays stale, so the failure repeats instead of caching
	_, err = sneaky.TryGet()
	assert.ErrorIs(t, err, property.ErrUndeclaredDependency)

	// nested reads belong to the evaluator that made them
	v, err := declared.TryGet()
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	loose := property.NewTable()
	la := property.Literal(loose, 1)
	lb := property.Literal(loose, 2)
	lc := property.Computed(loose, func() int { return la.Get() + lb.Get() }, la)
	assert.Equal(t, 3, lc.Get())
}

func TestCheckPassesThroughLifecycle(t *testing.T) {
	tbl := property.NewTable()
	var cells []*property.Property[int]
	root := property.Literal(tbl, 0)
	cells = append(cells, root)
	for i := 1; i < 20; i++ {
		a, b := cells[i/2], cells[(i-1)/3]
		cells = append(cells, property.Computed(tbl, func() int { return a.Get() + b.Get() + 1 }, a, b))
	}
	require.NoError(t, tbl.Check())

	cells[len(cells)-1].Get()
	root.Set(7)
	require.NoError(t, tbl.Check())

	require.NoError(t, cells[5].TryReplaceWith(cells[1]))
	require.NoError(t, tbl.Check())

	for i := 0; i < len(cells); i += 3 {
		cells[i].Drop()
	}
	require.NoError(t, tbl.Check())
	assert.Equal(t, len(cells)-7, tbl.Len())
}
