package ecs

import (
	"slices"
	"sort"

	"github.com/plus3/sparsecs/internal/assert"
	"github.com/rotisserie/eris"
)

// freeRun is a contiguous block of free ids [head, head+count).
type freeRun struct {
	head  Entity
	count int32
}

// FreeListAllocator recycles returned ids, tracking them as runs of contiguous free ids.
// Bookkeeping grows with the number of gaps, not with the number of free ids.
//
// Runs are kept in descending order of head so the lowest run sits at the end of the
// slice and Allocate can take from it without shifting.
type FreeListAllocator struct {
	runs []freeRun
	next Entity
}

// NewFreeListAllocator creates an allocator whose first entity is 0.
func NewFreeListAllocator() *FreeListAllocator {
	return &FreeListAllocator{}
}

// Allocate takes the lowest free id, or advances the frontier when nothing is free.
func (a *FreeListAllocator) Allocate() Entity {
	if n := len(a.runs); n > 0 {
		r := &a.runs[n-1]
		e := r.head
		r.head++
		r.count--
		if r.count == 0 {
			a.runs = a.runs[:n-1]
		}
		return e
	}
	e := a.next
	a.next++
	return e
}

// Return frees e, merging it with the runs (or the frontier) on either side.
// Cost is linear in the number of free runs.
func (a *FreeListAllocator) Return(e Entity) {
	assert.That(e >= 0 && e < a.next, "entity %d was never allocated", e)

	if e == a.next-1 {
		a.next = e
		if len(a.runs) > 0 && a.runs[0].head+Entity(a.runs[0].count) == a.next {
			a.next = a.runs[0].head
			a.runs = slices.Delete(a.runs, 0, 1)
		}
		return
	}

	// Walk from the highest run down to the first one starting below e.
	i := 0
	for i < len(a.runs) && a.runs[i].head > e {
		i++
	}
	above, below := i-1, i

	assert.That(below >= len(a.runs) || a.runs[below].head+Entity(a.runs[below].count) <= e,
		"entity %d returned twice", e)

	mergeBelow := below < len(a.runs) && a.runs[below].head+Entity(a.runs[below].count) == e
	mergeAbove := above >= 0 && a.runs[above].head == e+1

	switch {
	case mergeBelow && mergeAbove:
		a.runs[below].count += 1 + a.runs[above].count
		a.runs = slices.Delete(a.runs, above, above+1)
	case mergeBelow:
		a.runs[below].count++
	case mergeAbove:
		a.runs[above].head = e
		a.runs[above].count++
	default:
		a.runs = slices.Insert(a.runs, i, freeRun{head: e, count: 1})
	}
}

// Next returns the frontier: the id Allocate produces once every free run is used up.
func (a *FreeListAllocator) Next() Entity {
	return a.next
}

// Runs returns the number of disjoint free runs.
func (a *FreeListAllocator) Runs() int {
	return len(a.runs)
}

// Free returns the number of free ids below the frontier.
func (a *FreeListAllocator) Free() int {
	n := 0
	for _, r := range a.runs {
		n += int(r.count)
	}
	return n
}

// isFree reports whether e lies in a free run.
func (a *FreeListAllocator) isFree(e Entity) bool {
	i := sort.Search(len(a.runs), func(i int) bool { return a.runs[i].head <= e })
	return i < len(a.runs) && e < a.runs[i].head+Entity(a.runs[i].count)
}

func (a *FreeListAllocator) Audit(_ func(Entity) bool, alive []Entity) error {
	for i, r := range a.runs {
		if r.count <= 0 {
			return eris.Wrapf(ErrAllocatorMisuse, "free run at %d is empty", r.head)
		}
		if r.head+Entity(r.count) > a.next {
			return eris.Wrapf(ErrAllocatorMisuse, "free run at %d extends past frontier %d", r.head, a.next)
		}
		if i > 0 && r.head+Entity(r.count) >= a.runs[i-1].head {
			return eris.Wrapf(ErrAllocatorMisuse, "free runs at %d and %d overlap or touch", r.head, a.runs[i-1].head)
		}
	}
	for _, e := range alive {
		if e >= a.next {
			return eris.Wrapf(ErrAllocatorMisuse, "entity %d is alive but was never allocated (next %d)", e, a.next)
		}
		if a.isFree(e) {
			return eris.Wrapf(ErrAllocatorMisuse, "entity %d is alive but was returned to the allocator", e)
		}
	}
	return nil
}

// Reseed rebuilds the free runs from the gaps between the entities in alive, which is
// ascending. The frontier is placed just past the highest alive entity.
func (a *FreeListAllocator) Reseed(alive []Entity) {
	a.runs = a.runs[:0]
	a.next = 0

	for _, e := range alive {
		if e > a.next {
			a.runs = append(a.runs, freeRun{head: a.next, count: int32(e - a.next)})
		}
		a.next = e + 1
	}
	slices.Reverse(a.runs)
}
