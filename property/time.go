package property

// clock returns the table's time cell, creating it on first use. The clock
// belongs to the table, never to the scope that happens to be open.
func (t *Table) clock() *Property[uint64] {
	if t.time == nil {
		scopes := t.scopes
		t.scopes = nil
		t.time = LiteralWithName(t, uint64(0), "time")
		t.scopes = scopes
	}
	return t.time
}

// SetTime advances the clock to frames. Transitioning literals are marked
// dirty and pick up their eased value on the next read; those whose queue
// ran out are settled right away so they stop depending on the clock.
func (t *Table) SetTime(frames uint64) {
	clock := t.clock()
	clock.Set(frames)

	var settled []ID
	if err := t.withShared(clock.ID(), "time", func(r *record) error {
		for _, sub := range r.subscribers {
			if e, err := t.lookup(sub); err == nil && e.rec.transition != nil && e.rec.transition.exhausted(frames) {
				settled = append(settled, sub)
			}
		}
		return nil
	}); err != nil {
		panic(err)
	}
	for _, id := range settled {
		if err := t.update(id); err != nil {
			panic(err)
		}
	}
}

// Time reads the clock without registering a dependency on it.
func (t *Table) Time() uint64 {
	if t.time == nil {
		return 0
	}
	v, err := t.peek(t.time.ID())
	if err != nil {
		panic(err)
	}
	return v.(uint64)
}

// Transitioning reports how many literals are currently attached to the
// clock.
func (t *Table) Transitioning() int {
	if t.time == nil {
		return 0
	}
	n := 0
	if err := t.withShared(t.time.ID(), "time", func(r *record) error {
		n = len(r.subscribers)
		return nil
	}); err != nil {
		panic(err)
	}
	return n
}
