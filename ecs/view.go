package ecs

import (
	"iter"
	"slices"
)

// View is a cached query: the ascending list of entities present in every required table
// and in none of the excluded tables.
//
// A View never forces table creation. It remembers the sum of the version counters of the
// tables it reads and recomputes only when that sum moves. The sum uses wrapping uint32
// addition, so two different membership states can in principle collide after about 2^32
// structural changes; the stale result is then served until the next change.
//
// The slice returned by Entities is owned by the view and is replaced, never mutated, on
// recomputation. Removing components while iterating it is safe.
type View struct {
	storage  *Storage
	required []ComponentID
	excluded []ComponentID

	structuralOnly bool

	result   Bitset
	union    Bitset
	entities []Entity

	requiredSum uint32
	excludedSum uint32
	computed    bool
	unionBuilt  bool

	handle uint32
}

// ViewOption configures a View.
type ViewOption func(*View)

// Exclude drops entities that have a T component from the view.
func Exclude[T any]() ViewOption {
	return func(v *View) {
		v.excluded = append(v.excluded, RegisterComponent[T](v.storage.registry))
	}
}

// ExcludeIDs drops entities that have any of the given components from the view.
func ExcludeIDs(ids ...ComponentID) ViewOption {
	return func(v *View) {
		v.excluded = append(v.excluded, ids...)
	}
}

// OnlyOnStructuralChange makes Entities return an empty result whenever nothing changed
// since the previous call, so a system only sees the matching set when it moves.
func OnlyOnStructuralChange() ViewOption {
	return func(v *View) {
		v.structuralOnly = true
	}
}

// NewView creates a view over the required component ids, in order, and registers it with
// the storage so Destroy can release its scratch memory.
func NewView(storage *Storage, required []ComponentID, opts ...ViewOption) *View {
	if len(required) == 0 {
		panic("view needs at least one required component")
	}
	v := &View{
		storage:  storage,
		required: slices.Clone(required),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.handle = storage.registerView(v)
	return v
}

// options returns the options that rebuild v's exclusions and mode on another view.
func (v *View) options() []ViewOption {
	var opts []ViewOption
	if len(v.excluded) > 0 {
		opts = append(opts, ExcludeIDs(slices.Clone(v.excluded)...))
	}
	if v.structuralOnly {
		opts = append(opts, OnlyOnStructuralChange())
	}
	return opts
}

// Required returns the required component ids in declaration order.
func (v *View) Required() []ComponentID {
	return v.required
}

// Excluded returns the excluded component ids in declaration order.
func (v *View) Excluded() []ComponentID {
	return v.excluded
}

func (v *View) sum(ids []ComponentID) uint32 {
	var s uint32
	for _, id := range ids {
		if t := v.storage.table(id); t != nil {
			s += t.Version()
		}
	}
	return s
}

// Entities returns the matching entities in ascending order, recomputing them only if one
// of the underlying tables changed membership since the last call.
func (v *View) Entities() []Entity {
	requiredSum := v.sum(v.required)
	excludedSum := v.sum(v.excluded)

	if v.computed && requiredSum == v.requiredSum && excludedSum == v.excludedSum {
		if v.structuralOnly {
			v.entities = v.entities[:0]
		}
		return v.entities
	}

	if !v.unionBuilt || excludedSum != v.excludedSum {
		v.buildUnion()
	}
	v.requiredSum = requiredSum
	v.excludedSum = excludedSum
	v.computed = true

	for _, id := range v.required {
		if t := v.storage.table(id); t == nil || t.Len() == 0 {
			v.entities = nil
			return v.entities
		}
	}

	v.result.CopyFrom(v.storage.table(v.required[0]).Mask())
	for _, id := range v.required[1:] {
		v.result.Intersect(v.storage.table(id).Mask(), false)
	}
	if len(v.excluded) > 0 {
		v.result.Exclude(&v.union, false)
	}

	v.entities = make([]Entity, v.result.Count())
	v.result.fillEntities(v.entities)
	return v.entities
}

// buildUnion recomputes the union of the excluded tables' masks.
func (v *View) buildUnion() {
	v.union.Zero()
	for _, id := range v.excluded {
		if t := v.storage.table(id); t != nil {
			v.union.Union(t.Mask())
		}
	}
	v.unionBuilt = true
}

// Len returns the number of matching entities.
func (v *View) Len() int {
	return len(v.Entities())
}

// Iter iterates the matching entities in ascending order.
func (v *View) Iter() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range v.Entities() {
			if !yield(e) {
				return
			}
		}
	}
}

// Contains reports whether e currently matches the view. It reads the tables directly and
// does not touch the cached result.
func (v *View) Contains(e Entity) bool {
	for _, id := range v.required {
		t := v.storage.table(id)
		if t == nil || !t.Has(e) {
			return false
		}
	}
	for _, id := range v.excluded {
		if t := v.storage.table(id); t != nil && t.Has(e) {
			return false
		}
	}
	return true
}

// Invalidate forces the next Entities call to recompute.
func (v *View) Invalidate() {
	v.computed = false
	v.unionBuilt = false
}

// Release unregisters the view from its storage and drops its scratch memory. The view
// may still be used afterwards; it will simply reallocate.
func (v *View) Release() {
	if v.handle != 0 {
		v.storage.unregisterView(v.handle)
		v.handle = 0
	}
	v.releaseScratch()
}

func (v *View) releaseScratch() {
	v.result = Bitset{}
	v.union = Bitset{}
	v.entities = nil
	v.Invalidate()
}
