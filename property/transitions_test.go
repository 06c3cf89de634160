package property_test

import (
	"testing"

	"github.com/delaneyj/propertyparty/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseTo(t *testing.T) {
	tbl := property.NewTable()
	tbl.SetTime(0)
	p := property.Literal(tbl, 5)
	assert.Equal(t, 5, p.Get())

	require.NoError(t, property.EaseTo(p, 10, 5, property.Linear))
	assert.Equal(t, 5, p.Get())
	assert.Equal(t, 1, tbl.Transitioning())

	tbl.SetTime(1)
	assert.Equal(t, uint64(1), tbl.Time())
	assert.Equal(t, 6, p.Get())

	tbl.SetTime(5)
	assert.Equal(t, 10, p.Get())
	assert.NoError(t, tbl.Check())
}

func TestEaseToLater(t *testing.T) {
	tbl := property.NewTable()
	tbl.SetTime(0)
	p := property.Literal(tbl, 5)

	require.NoError(t, property.EaseTo(p, 10, 5, property.Linear))
	require.NoError(t, property.EaseToLater(p, 20, 10, property.Linear))
	assert.Equal(t, 5, p.Get())

	for _, step := range []struct {
		time uint64
		want int
	}{
		{1, 6},
		{5, 10},
		{6, 11},
		{15, 20},
		{17, 20},
		{20, 20},
	} {
		tbl.SetTime(step.time)
		assert.Equal(t, step.want, p.Get(), "at frame %d", step.time)
	}

	// the queue ran out, so p no longer hangs off the clock
	assert.Equal(t, 0, tbl.Transitioning())
	deps, _, err := tbl.Edges(p.ID())
	require.NoError(t, err)
	assert.Empty(t, deps)
	assert.NoError(t, tbl.Check())
}

func TestEaseToRestartsFromCurrentValue(t *testing.T) {
	tbl := property.NewTable()
	tbl.SetTime(0)
	p := property.Literal(tbl, 0.0)

	require.NoError(t, property.EaseTo(p, 100, 10, property.Linear))
	require.NoError(t, property.EaseToLater(p, 500, 10, property.Linear))
	tbl.SetTime(5)
	require.NoError(t, property.EaseTo(p, 0, 5, property.Linear))

	assert.InDelta(t, 50, p.Get(), 1e-9, "the second ease starts where the first one was")
	tbl.SetTime(10)
	assert.InDelta(t, 0, p.Get(), 1e-9, "the queued ease was dropped")
}

func TestTransitionsPropagate(t *testing.T) {
	tbl := property.NewTable()
	p := property.Literal(tbl, 0.0)
	doubleCalls := 0
	double := property.Computed(tbl, func() float64 {
		doubleCalls++
		return p.Get() * 2
	}, p)
	assert.Equal(t, 0.0, double.Get())

	require.NoError(t, property.EaseTo(p, 10, 10, property.Linear))
	tbl.SetTime(5)
	assert.InDelta(t, 10, double.Get(), 1e-9)
	tbl.SetTime(10)
	assert.InDelta(t, 20, double.Get(), 1e-9)

	// settled; advancing the clock leaves p and double alone
	tbl.SetTime(11)
	assert.InDelta(t, 20, double.Get(), 1e-9)
	calls := doubleCalls
	tbl.SetTime(30)
	assert.InDelta(t, 20, double.Get(), 1e-9)
	assert.Equal(t, calls, doubleCalls)
}

func TestSetCancelsTransition(t *testing.T) {
	tbl := property.NewTable()
	p := property.Literal(tbl, 0)
	require.NoError(t, property.EaseTo(p, 100, 10, property.Linear))
	tbl.SetTime(5)
	assert.Equal(t, 50, p.Get())

	p.Set(7)
	assert.Equal(t, 0, tbl.Transitioning())
	tbl.SetTime(6)
	assert.Equal(t, 7, p.Get())
	assert.NoError(t, tbl.Check())
}

func TestRedirectCancelsTransition(t *testing.T) {
	tbl := property.NewTable()
	p := property.Literal(tbl, 0)
	q := property.Literal(tbl, 42)
	require.NoError(t, property.EaseTo(p, 100, 10, property.Linear))

	require.NoError(t, p.TryReplaceWith(q))
	assert.Equal(t, 0, tbl.Transitioning())
	tbl.SetTime(5)
	assert.Equal(t, 42, p.Get())
	assert.NoError(t, tbl.Check())
}

func TestEaseComputedFails(t *testing.T) {
	tbl := property.NewTable()
	a := property.Literal(tbl, 1)
	c := property.Computed(tbl, func() int { return a.Get() }, a)
	assert.ErrorIs(t, property.EaseTo(c, 10, 5, property.Linear), property.ErrSetComputed)
}

type point struct {
	X, Y float64
}

func lerpPoint(from, to point, t float64) point {
	return point{
		X: property.Lerp(from.X, to.X, t),
		Y: property.Lerp(from.Y, to.Y, t),
	}
}

func TestEaseToWith(t *testing.T) {
	tbl := property.NewTable()
	p := property.Literal(tbl, point{})
	require.NoError(t, property.EaseToWith(p, point{X: 10, Y: -10}, 4, property.InQuad, lerpPoint))

	tbl.SetTime(2)
	got := p.Get()
	assert.InDelta(t, 2.5, got.X, 1e-9)
	assert.InDelta(t, -2.5, got.Y, 1e-9)

	require.NoError(t, property.EaseToLaterWith(p, point{}, 4, nil, lerpPoint))
	tbl.SetTime(6)
	got = p.Get()
	assert.InDelta(t, 5, got.X, 1e-9)
	tbl.SetTime(9)
	assert.Equal(t, point{}, p.Get())
}

func TestCurves(t *testing.T) {
	for name, curve := range map[string]property.Curve{
		"linear":      property.Linear,
		"in quad":     property.InQuad,
		"out quad":    property.OutQuad,
		"in back":     property.InBack,
		"out back":    property.OutBack,
		"in out back": property.InOutBack,
	} {
		assert.InDelta(t, 0, curve(0), 1e-9, name)
		assert.InDelta(t, 1, curve(1), 1e-9, name)
	}
	assert.InDelta(t, 0.25, property.InQuad(0.5), 1e-9)
	assert.InDelta(t, 0.75, property.OutQuad(0.5), 1e-9)
	assert.Less(t, property.InBack(0.3), 0.0, "in back dips below the start")
	assert.Greater(t, property.OutBack(0.7), 1.0, "out back overshoots the end")

	tbl := property.NewTable()
	p := property.Literal(tbl, 0)
	step := property.CustomCurve(func(x float64) float64 {
		if x < 1 {
			return 0
		}
		return 1
	})
	require.NoError(t, property.EaseTo(p, 8, 4, step))
	tbl.SetTime(3)
	assert.Equal(t, 0, p.Get())
	tbl.SetTime(4)
	assert.Equal(t, 8, p.Get())
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 15, property.Lerp(10, 20, 0.5))
	assert.Equal(t, uint8(5), property.Lerp[uint8](10, 0, 0.5))
	assert.InDelta(t, 1.5, property.Lerp(1.0, 2.0, 0.5), 1e-9)
}

func TestLerpSaturates(t *testing.T) {
	assert.Equal(t, uint8(0), property.Lerp[uint8](0, 100, -0.05))
	assert.Equal(t, uint8(255), property.Lerp[uint8](200, 255, 1.5))
	assert.Equal(t, int8(127), property.Lerp[int8](0, 127, 1.5))
	assert.Equal(t, int8(-128), property.Lerp[int8](0, -128, 1.5))
	assert.Equal(t, uint64(0), property.Lerp[uint64](5, 10, -3))
	assert.Equal(t, -5, property.Lerp(0, 10, -0.5))

	tbl := property.NewTable()
	p := property.Literal(tbl, uint8(0))
	require.NoError(t, property.EaseTo(p, 100, 10, property.InBack))
	tbl.SetTime(2)
	assert.Equal(t, uint8(0), p.Get(), "in back dips below zero")
	tbl.SetTime(11)
	assert.Equal(t, uint8(100), p.Get())
}
