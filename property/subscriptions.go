package property

// SubscriptionID identifies one callback registered with Subscribe.
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	fn func()
}

// Subscribe registers fn to run after every mutation that invalidates the
// cell. A subscribed cell is kept up to date eagerly: it is brought current
// now and again right before its callbacks run, so the next upstream change
// always reaches it. Callbacks run once propagation has finished and may
// read, write and create cells.
func (p *Property[T]) Subscribe(fn func()) (SubscriptionID, error) {
	if err := p.untyped.live("subscribe"); err != nil {
		return 0, err
	}
	return p.untyped.tbl.subscribe(p.untyped.id, fn)
}

func (p *Property[T]) Unsubscribe(sub SubscriptionID) error {
	if err := p.untyped.live("unsubscribe"); err != nil {
		return err
	}
	return p.untyped.tbl.unsubscribe(p.untyped.id, sub)
}

func (t *Table) subscribe(id ID, fn func()) (SubscriptionID, error) {
	t.nextSub++
	sub := t.nextSub
	err := t.withExclusive(id, "subscribe", func(r *record) error {
		r.subscriptions = append(r.subscriptions, subscription{id: sub, fn: fn})
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := t.update(id); err != nil {
		return 0, err
	}
	return sub, nil
}

func (t *Table) unsubscribe(id ID, sub SubscriptionID) error {
	return t.withExclusive(id, "unsubscribe", func(r *record) error {
		for i, s := range r.subscriptions {
			if s.id == sub {
				r.subscriptions = append(r.subscriptions[:i], r.subscriptions[i+1:]...)
				return nil
			}
		}
		return ErrMissingEntry
	})
}

// notify brings every subscribed cell among ids up to date and runs its
// callbacks with no borrows held. A cell removed by an earlier callback is
// skipped.
func (t *Table) notify(ids []ID) {
	for _, id := range ids {
		e, err := t.lookup(id)
		if err != nil || len(e.rec.subscriptions) == 0 {
			continue
		}
		if err := t.update(id); err != nil {
			panic(err)
		}
		// callbacks may unsubscribe while we iterate
		subs := make([]subscription, len(e.rec.subscriptions))
		copy(subs, e.rec.subscriptions)
		for _, s := range subs {
			if _, err := t.lookup(id); err != nil {
				break
			}
			s.fn()
		}
	}
}
