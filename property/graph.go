package property

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"
)

// connect adds id to the subscribers of each dependency.
// NOTE: does not touch the dependency list of id itself.
func (t *Table) connect(id ID, deps []ID) {
	for _, dep := range deps {
		if de, err := t.lookup(dep); err == nil {
			de.rec.subscribers = append(de.rec.subscribers, id)
		}
	}
}

// disconnect removes id from the subscribers of each dependency.
// NOTE: does not touch the dependency list of id itself.
func (t *Table) disconnect(id ID, deps []ID) {
	for _, dep := range deps {
		if de, err := t.lookup(dep); err == nil {
			de.rec.subscribers = removeID(de.rec.subscribers, id)
		}
	}
}

// markDirty walks subscriber edges from seeds and marks every clean cell it
// reaches. Dirty cells are neither revisited nor expanded. Cells that are
// being evaluated are skipped; they store a value computed from the fresh
// inputs when their evaluator returns. Returns the cells that flipped.
func (t *Table) markDirty(seeds []ID) []ID {
	if len(seeds) == 0 {
		return nil
	}
	t.stats.Propagations++

	stack := make([]ID, len(seeds))
	copy(stack, seeds)
	var flipped []ID
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.stats.Visits++

		e, err := t.lookup(id)
		if err != nil || e.borrow < 0 || e.rec.dirty {
			continue
		}
		e.rec.dirty = true
		t.stats.DirtyMarks++
		flipped = append(flipped, id)
		stack = append(stack, e.rec.subscribers...)
	}
	return flipped
}

// dependsOn reports whether from transitively depends on target, following
// subscriber edges out of target.
func (t *Table) dependsOn(from, target ID) bool {
	if from == target {
		return true
	}
	seen := mapset.NewThreadUnsafeSet[ID]()
	stack := []ID{target}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Add(id) {
			continue
		}
		e, err := t.lookup(id)
		if err != nil {
			continue
		}
		for _, sub := range e.rec.subscribers {
			if sub == from {
				return true
			}
			stack = append(stack, sub)
		}
	}
	return false
}

// Check verifies the graph invariants and reports every violation found.
func (t *Table) Check() error {
	var result *multierror.Error

	live := 0
	indegree := map[ID]int{}
	for idx, e := range t.entries {
		if !e.live {
			continue
		}
		live++
		id := ID{index: uint32(idx), gen: e.gen}
		label := t.Label(id)

		if e.refCount <= 0 {
			result = multierror.Append(result, fmt.Errorf("%s %q: live with %d references", id, label, e.refCount))
		}
		if e.borrow != 0 {
			result = multierror.Append(result, fmt.Errorf("%s %q: still borrowed (%d)", id, label, e.borrow))
		}
		if e.rec.kind == kindLiteral && e.rec.transition == nil && len(e.rec.dependencies) > 0 {
			result = multierror.Append(result, fmt.Errorf("%s %q: literal with %d dependencies", id, label, len(e.rec.dependencies)))
		}

		deps := mapset.NewThreadUnsafeSet[ID]()
		liveDeps := 0
		for _, dep := range e.rec.dependencies {
			if !deps.Add(dep) {
				result = multierror.Append(result, fmt.Errorf("%s %q: duplicate dependency %s", id, label, dep))
				continue
			}
			de, err := t.lookup(dep)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s %q: dangling dependency %s", id, label, dep))
				continue
			}
			liveDeps++
			if n := countID(de.rec.subscribers, id); n != 1 {
				result = multierror.Append(result, fmt.Errorf("%s %q: listed %d times as subscriber of %s", id, label, n, dep))
			}
		}
		indegree[id] = liveDeps

		subs := mapset.NewThreadUnsafeSet[ID]()
		for _, sub := range e.rec.subscribers {
			if !subs.Add(sub) {
				result = multierror.Append(result, fmt.Errorf("%s %q: duplicate subscriber %s", id, label, sub))
				continue
			}
			se, err := t.lookup(sub)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s %q: dangling subscriber %s", id, label, sub))
				continue
			}
			if countID(se.rec.dependencies, id) != 1 {
				result = multierror.Append(result, fmt.Errorf("%s %q: subscriber %s does not depend on it", id, label, sub))
			}
		}
	}
	if live != t.live {
		result = multierror.Append(result, fmt.Errorf("live count %d, found %d live cells", t.live, live))
	}

	// Kahn over the live part of the graph; anything left over sits on a cycle.
	var queue []ID
	for id, n := range indegree {
		if n == 0 {
			queue = append(queue, id)
		}
	}
	sorted := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted++
		e, _ := t.lookup(id)
		for _, sub := range e.rec.subscribers {
			if _, ok := indegree[sub]; !ok {
				continue
			}
			indegree[sub]--
			if indegree[sub] == 0 {
				queue = append(queue, sub)
			}
		}
	}
	if sorted < len(indegree) {
		result = multierror.Append(result, fmt.Errorf("%w: %d cells are not reachable in topological order", ErrCycle, len(indegree)-sorted))
	}

	return result.ErrorOrNil()
}

func removeID(ids []ID, id ID) []ID {
	out := ids[:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

func countID(ids []ID, id ID) int {
	n := 0
	for _, other := range ids {
		if other == id {
			n++
		}
	}
	return n
}

func uniqueIDs(ids []ID) []ID {
	seen := mapset.NewThreadUnsafeSet[ID]()
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if seen.Add(id) {
			out = append(out, id)
		}
	}
	return out
}
