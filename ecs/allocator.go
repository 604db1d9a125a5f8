package ecs

import (
	"github.com/rotisserie/eris"
)

// EntityAllocator hands out entity ids for a Storage.
type EntityAllocator interface {
	Allocate() Entity
	Return(e Entity)
}

// Auditor is implemented by allocators that can cross-check their bookkeeping against
// entity liveness. It backs the opt-in Storage.Validate pass and is never run on allocate.
type Auditor interface {
	Audit(alive func(Entity) bool, aliveEntities []Entity) error
}

// Reseeder is implemented by allocators that can rebuild their state from the ascending
// list of alive entities. Storage.Deserialize uses it after loading.
type Reseeder interface {
	Reseed(alive []Entity)
}

// MonotonicAllocator returns last+1 forever. Ids are never reused.
type MonotonicAllocator struct {
	next Entity
}

// NewMonotonicAllocator creates an allocator whose first entity is 0.
func NewMonotonicAllocator() *MonotonicAllocator {
	return &MonotonicAllocator{}
}

func (a *MonotonicAllocator) Allocate() Entity {
	e := a.next
	a.next++
	return e
}

// Return is a no-op; monotonic ids are never recycled.
func (a *MonotonicAllocator) Return(Entity) {}

// Next returns the entity the next Allocate call will produce.
func (a *MonotonicAllocator) Next() Entity {
	return a.next
}

func (a *MonotonicAllocator) Audit(_ func(Entity) bool, alive []Entity) error {
	for _, e := range alive {
		if e >= a.next {
			return eris.Wrapf(ErrAllocatorMisuse, "entity %d is alive but was never allocated (next %d)", e, a.next)
		}
	}
	return nil
}

// RingAllocator hands out next % size and ignores returns. The caller guarantees an id is
// dead before the ring wraps around to it; only Audit checks that.
type RingAllocator struct {
	next Entity
	size Entity
}

// NewRingAllocator creates a ring allocator over [0, size).
func NewRingAllocator(size int) *RingAllocator {
	if size <= 0 {
		panic("ring allocator size must be positive")
	}
	return &RingAllocator{size: Entity(size)}
}

func (a *RingAllocator) Allocate() Entity {
	e := a.next % a.size
	a.next = (a.next + 1) % a.size
	return e
}

// Return is ignored; the ring recycles ids purely by position.
func (a *RingAllocator) Return(Entity) {}

// Size returns the number of ids in the ring.
func (a *RingAllocator) Size() int {
	return int(a.size)
}

func (a *RingAllocator) Audit(isAlive func(Entity) bool, alive []Entity) error {
	for _, e := range alive {
		if e >= a.size {
			return eris.Wrapf(ErrAllocatorMisuse, "entity %d is outside ring of size %d", e, a.size)
		}
	}
	if isAlive(a.next) {
		return eris.Wrapf(ErrAllocatorMisuse, "ring would recycle live entity %d", a.next)
	}
	return nil
}

// Reseed moves the allocator past every entity in alive, which is ascending.
func (a *MonotonicAllocator) Reseed(alive []Entity) {
	a.next = 0
	if n := len(alive); n > 0 {
		a.next = alive[n-1] + 1
	}
}

// Reseed positions the ring just past the highest entity in alive, which is ascending.
func (a *RingAllocator) Reseed(alive []Entity) {
	a.next = 0
	if n := len(alive); n > 0 {
		a.next = (alive[n-1] + 1) % a.size
	}
}
