package property

import (
	"fmt"
	"math"
	"reflect"
)

// Curve maps linear progress on [0,1] to eased progress. Overshooting curves
// may leave the unit interval.
type Curve func(t float64) float64

const (
	backC1 = 1.70158
	backC2 = backC1 * 1.525
	backC3 = backC1 + 1
)

var (
	Linear  Curve = func(t float64) float64 { return t }
	InQuad  Curve = func(t float64) float64 { return t * t }
	OutQuad Curve = func(t float64) float64 {
		return 1 - (1-t)*(1-t)
	}
	InBack Curve = func(t float64) float64 {
		return backC3*t*t*t - backC1*t*t
	}
	OutBack Curve = func(t float64) float64 {
		return 1 + backC3*math.Pow(t-1, 3) + backC1*math.Pow(t-1, 2)
	}
	InOutBack Curve = func(t float64) float64 {
		if t < 0.5 {
			return (math.Pow(2*t, 2) * ((backC2+1)*2*t - backC2)) / 2
		}
		return (math.Pow(2*t-2, 2)*((backC2+1)*(t*2-2)+backC2) + 2) / 2
	}
)

// CustomCurve wraps a caller supplied easing function.
func CustomCurve(f func(t float64) float64) Curve {
	return Curve(f)
}

// Interpolator returns the value between from and to at eased progress t.
type Interpolator[T any] func(from, to T, t float64) T

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Lerp interpolates linearly between from and to. Integer results saturate
// at the bounds of T when an overshooting curve leaves its range.
func Lerp[T Number](from, to T, t float64) T {
	f := float64(from)
	return saturate[T](f + (float64(to)-f)*t)
}

func saturate[T Number](v float64) T {
	typ := reflect.TypeFor[T]()
	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		return T(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		bits := typ.Bits()
		switch {
		case math.IsNaN(v), v <= 0:
			return 0
		case v >= math.Ldexp(1, bits):
			hi := ^uint64(0) >> (64 - bits)
			return T(hi)
		}
		return T(v)
	default:
		bits := typ.Bits()
		switch {
		case math.IsNaN(v):
			return 0
		case v < -math.Ldexp(1, bits-1):
			lo := int64(-1) << (bits - 1)
			return T(lo)
		case v >= math.Ldexp(1, bits-1):
			hi := int64(^uint64(0) >> (65 - bits))
			return T(hi)
		}
		return T(v)
	}
}

// transitioner is the type-erased face of a transitionManager.
type transitioner interface {
	step(now uint64) (value any, done bool)
	exhausted(now uint64) bool
	pending() int
}

type transitionEntry[T any] struct {
	frames uint64
	curve  Curve
	end    T
}

// transitionManager eases a literal through a queue of transitions. origin
// is the frame the head of the queue started at and checkpoint the value it
// started from.
type transitionManager[T any] struct {
	interp     Interpolator[T]
	queue      []transitionEntry[T]
	checkpoint T
	origin     uint64
}

func (m *transitionManager[T]) eased(now uint64) (T, bool) {
	if now < m.origin {
		now = m.origin
	}
	for len(m.queue) > 0 {
		head := m.queue[0]
		if head.frames != 0 && now-m.origin <= head.frames {
			break
		}
		m.origin += head.frames
		m.checkpoint = head.end
		m.queue = m.queue[1:]
	}
	if len(m.queue) == 0 {
		return m.checkpoint, true
	}
	head := m.queue[0]
	progress := float64(now-m.origin) / float64(head.frames)
	return m.interp(m.checkpoint, head.end, head.curve(progress)), false
}

func (m *transitionManager[T]) step(now uint64) (any, bool) {
	return m.eased(now)
}

func (m *transitionManager[T]) exhausted(now uint64) bool {
	if now < m.origin {
		return len(m.queue) == 0
	}
	origin := m.origin
	for _, q := range m.queue {
		if q.frames != 0 && now-origin <= q.frames {
			return false
		}
		origin += q.frames
	}
	return true
}

func (m *transitionManager[T]) pending() int {
	return len(m.queue)
}

// reset restarts the queue from wherever the running transition is at now.
func (m *transitionManager[T]) reset(now uint64) {
	m.checkpoint, _ = m.eased(now)
	m.queue = m.queue[:0]
	m.origin = now
}

// EaseTo drops any queued transitions and eases p from its current value to
// end over frames ticks of the table clock.
func EaseTo[T Number](p *Property[T], end T, frames uint64, curve Curve) error {
	return ease(p, end, frames, curve, Lerp[T], true)
}

// EaseToLater queues a transition that starts once the queued ones finish.
func EaseToLater[T Number](p *Property[T], end T, frames uint64, curve Curve) error {
	return ease(p, end, frames, curve, Lerp[T], false)
}

func EaseToWith[T any](p *Property[T], end T, frames uint64, curve Curve, interp Interpolator[T]) error {
	return ease(p, end, frames, curve, interp, true)
}

func EaseToLaterWith[T any](p *Property[T], end T, frames uint64, curve Curve, interp Interpolator[T]) error {
	return ease(p, end, frames, curve, interp, false)
}

func ease[T any](p *Property[T], end T, frames uint64, curve Curve, interp Interpolator[T], overwrite bool) error {
	if err := p.untyped.live("ease"); err != nil {
		return err
	}
	if curve == nil {
		curve = Linear
	}
	if interp == nil {
		return p.untyped.tbl.fail("ease", p.untyped.id, fmt.Errorf("%w: no interpolator for %s", ErrTypeMismatch, typeOf[T]()))
	}

	tbl, id := p.cell()
	clock := tbl.clock().ID()
	if clock == id {
		return tbl.fail("ease", id, ErrCycle)
	}
	now := tbl.Time()

	if err := tbl.withExclusive(id, "ease", func(r *record) error {
		if r.typ != typeOf[T]() {
			return ErrTypeMismatch
		}
		if r.kind == kindComputed {
			return ErrSetComputed
		}
		m, _ := r.transition.(*transitionManager[T])
		switch {
		case m == nil:
			current, _ := r.value.(T)
			m = &transitionManager[T]{checkpoint: current, origin: now}
			r.transition = m
			r.dependencies = []ID{clock}
			tbl.connect(id, r.dependencies)
		case overwrite:
			m.reset(now)
		}
		m.interp = interp
		m.queue = append(m.queue, transitionEntry[T]{frames: frames, curve: curve, end: end})
		return nil
	}); err != nil {
		return err
	}

	tbl.log.Debug("transition queued", "id", id, "label", tbl.Label(id), "frames", frames, "overwrite", overwrite)
	tbl.notify(tbl.markDirty([]ID{id}))
	return nil
}

// stepTransition moves a transitioning literal to the eased value for the
// current time and detaches it from the clock once its queue is exhausted.
func (t *Table) stepTransition(id ID) error {
	now := t.Time()
	var (
		subs    []ID
		changed bool
	)
	if err := t.withExclusive(id, "transition", func(r *record) error {
		if r.transition == nil {
			return nil
		}
		v, done := r.transition.step(now)
		changed = !reflect.DeepEqual(r.value, v)
		r.value = v
		if done {
			t.cancelTransition(id, r)
		}
		subs = make([]ID, len(r.subscribers))
		copy(subs, r.subscribers)
		return nil
	}); err != nil {
		return err
	}
	if changed {
		t.markDirty(subs)
	}
	return nil
}

// cancelTransition drops the queue and the clock edge. The current value
// stays where the transition left it.
func (t *Table) cancelTransition(id ID, r *record) {
	t.disconnect(id, r.dependencies)
	r.dependencies = nil
	r.transition = nil
	t.log.Debug("transition stopped", "id", id)
}
