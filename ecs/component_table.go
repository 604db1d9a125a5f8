package ecs

import (
	"iter"
	"reflect"

	"github.com/plus3/sparsecs/internal/assert"
	"github.com/rotisserie/eris"
)

// MinTableCapacity is the smallest capacity a ComponentTable is created with.
const MinTableCapacity = 64

const sparseTombstone = -1

// Disposer is implemented by component values that own external resources. Dispose is
// called when the value is removed from its table, when the table is cleared and when
// the owning Storage is destroyed.
type Disposer interface {
	Dispose()
}

var disposerType = reflect.TypeFor[Disposer]()

var _ iComponentTable = &ComponentTable[struct{}]{}

// ComponentTable is a sparse set holding the T component of every entity that has one.
//
// Values are packed in dense, with entities[i] naming the owner of dense[i] and sparse
// mapping an entity back to its dense index. Removal swaps the last element into the freed
// slot, so dense order is insertion order only until the first removal.
//
// version increases on every change of membership (never on in-place value mutation);
// views sum it to decide whether their cached results are stale.
type ComponentTable[T any] struct {
	id   ComponentID
	name string

	dense    []T
	entities []Entity
	sparse   []int32
	length   int
	mask     Bitset

	version      uint32
	singleFrame  []Entity
	pending      Bitset
	disposable   bool
	serializable bool
}

// NewComponentTable creates a standalone table. capacity is clamped to MinTableCapacity.
func NewComponentTable[T any](capacity int) *ComponentTable[T] {
	return newComponentTable[T](0, capacity)
}

func newComponentTable[T any](id ComponentID, capacity int) *ComponentTable[T] {
	capacity = max(capacity, MinTableCapacity)
	t := reflect.TypeFor[T]()

	table := &ComponentTable[T]{
		id:           id,
		name:         t.String(),
		dense:        make([]T, capacity),
		entities:     make([]Entity, capacity),
		sparse:       make([]int32, capacity),
		disposable:   reflect.PointerTo(t).Implements(disposerType),
		serializable: reflect.PointerTo(t).Implements(serializerType),
	}
	for i := range table.sparse {
		table.sparse[i] = sparseTombstone
	}
	table.mask.EnsureCapacity(capacity)
	return table
}

// ID returns the component id the table was created for.
func (t *ComponentTable[T]) ID() ComponentID {
	return t.id
}

// Name returns the component type name.
func (t *ComponentTable[T]) Name() string {
	return t.name
}

// Len returns the number of entities in the table.
func (t *ComponentTable[T]) Len() int {
	return t.length
}

// Cap returns the dense capacity.
func (t *ComponentTable[T]) Cap() int {
	return len(t.dense)
}

// Version returns the structural version counter.
func (t *ComponentTable[T]) Version() uint32 {
	return t.version
}

// Mask returns the membership bitset. It must be treated as read-only.
func (t *ComponentTable[T]) Mask() *Bitset {
	return &t.mask
}

// Entities returns the members in dense order. The slice is only valid until the next
// structural change.
func (t *ComponentTable[T]) Entities() []Entity {
	return t.entities[:t.length]
}

// Values returns the packed values in dense order, parallel to Entities.
func (t *ComponentTable[T]) Values() []T {
	return t.dense[:t.length]
}

// All iterates entities and pointers to their values in dense order.
func (t *ComponentTable[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := 0; i < t.length; i++ {
			if !yield(t.entities[i], &t.dense[i]) {
				return
			}
		}
	}
}

// Has reports whether e has a value in the table.
func (t *ComponentTable[T]) Has(e Entity) bool {
	return e >= 0 && int(e) < len(t.sparse) && t.sparse[e] != sparseTombstone
}

// Add stores v for e. Adding an entity that is already present is a programmer error:
// checked builds panic with ErrDuplicateEntity, release builds corrupt the table.
func (t *ComponentTable[T]) Add(e Entity, v T) {
	if assert.Enabled && t.Has(e) {
		panic(eris.Wrapf(ErrDuplicateEntity, "entity %d already has %s", e, t.name))
	}
	t.insert(e, v)
	t.version++
}

// AddOrReplace stores v for e, overwriting any existing value. Overwriting does not call
// Dispose on the old value and does not change the version.
func (t *ComponentTable[T]) AddOrReplace(e Entity, v T) {
	if t.Has(e) {
		t.dense[t.sparse[e]] = v
		return
	}
	t.insert(e, v)
	t.version++
}

// AddSingleFrame adds v for e and queues e for removal on the next ClearSingleFrameEntities.
func (t *ComponentTable[T]) AddSingleFrame(e Entity, v T) {
	t.Add(e, v)
	t.singleFrame = append(t.singleFrame, e)
	t.pending.Set(int(e), true)
}

// BulkAdd appends the same value for every entity in entities, skipping duplicate checks.
// The version is bumped once for the whole run.
func (t *ComponentTable[T]) BulkAdd(entities []Entity, v T) {
	if len(entities) == 0 {
		return
	}

	highest := entities[0]
	for _, e := range entities[1:] {
		highest = max(highest, e)
	}
	t.ensureSparse(highest)
	t.ensureDense(t.length + len(entities))

	for _, e := range entities {
		t.dense[t.length] = v
		t.entities[t.length] = e
		t.sparse[e] = int32(t.length)
		t.mask.Set(int(e), true)
		t.length++
	}
	t.version++
}

func (t *ComponentTable[T]) insert(e Entity, v T) {
	assert.That(e >= 0, "cannot add null entity %d to %s", e, t.name)

	t.ensureSparse(e)
	t.ensureDense(t.length + 1)

	t.dense[t.length] = v
	t.entities[t.length] = e
	t.sparse[e] = int32(t.length)
	t.mask.Set(int(e), true)
	t.length++
}

// Remove deletes e's value, returning false if e was not present. The last dense element
// is moved into the freed slot.
func (t *ComponentTable[T]) Remove(e Entity) bool {
	if !t.Has(e) {
		return false
	}

	i := int(t.sparse[e])
	t.dispose(i)

	last := t.length - 1
	if i != last {
		t.dense[i] = t.dense[last]
		moved := t.entities[last]
		t.entities[i] = moved
		t.sparse[moved] = int32(i)
	}

	var zero T
	t.dense[last] = zero
	t.entities[last] = NullEntity
	t.length--

	t.sparse[e] = sparseTombstone
	t.mask.Set(int(e), false)
	t.pending.Set(int(e), false)
	t.version++
	return true
}

// Value returns a pointer to e's value. The pointer is valid until the next structural
// change of the table. e must be present: callers gate on Has or use TryValue.
func (t *ComponentTable[T]) Value(e Entity) *T {
	if assert.Enabled && !t.Has(e) {
		panic(eris.Wrapf(ErrAbsentEntity, "entity %d has no %s", e, t.name))
	}
	return &t.dense[t.sparse[e]]
}

// TryValue returns a pointer to e's value and whether it exists.
func (t *ComponentTable[T]) TryValue(e Entity) (*T, bool) {
	if !t.Has(e) {
		return nil, false
	}
	return &t.dense[t.sparse[e]], true
}

// ClearSingleFrameEntities removes every entity queued by AddSingleFrame that is still
// present and empties the queue. An entity removed and re-added with Add in between is
// no longer single-frame and stays.
func (t *ComponentTable[T]) ClearSingleFrameEntities() {
	for _, e := range t.singleFrame {
		if t.pending.Has(int(e)) {
			t.Remove(e)
		}
	}
	t.singleFrame = t.singleFrame[:0]
}

// Clear removes every entity, disposing their values.
func (t *ComponentTable[T]) Clear() {
	if t.length == 0 {
		t.singleFrame = t.singleFrame[:0]
		return
	}

	for i := 0; i < t.length; i++ {
		t.dispose(i)
		t.sparse[t.entities[i]] = sparseTombstone
		t.entities[i] = NullEntity
	}
	clear(t.dense[:t.length])
	t.length = 0
	t.mask.Zero()
	t.pending.Zero()
	t.singleFrame = t.singleFrame[:0]
	t.version++
}

func (t *ComponentTable[T]) destroy() {
	for i := 0; i < t.length; i++ {
		t.dispose(i)
	}
	t.dense = nil
	t.entities = nil
	t.sparse = nil
	t.mask = Bitset{}
	t.pending = Bitset{}
	t.singleFrame = nil
	t.length = 0
	t.version++
}

func (t *ComponentTable[T]) dispose(i int) {
	if t.disposable {
		any(&t.dense[i]).(Disposer).Dispose()
	}
}

// ensureSparse grows sparse (and the mask) geometrically until e is addressable.
func (t *ComponentTable[T]) ensureSparse(e Entity) {
	if int(e) < len(t.sparse) {
		return
	}
	n := max(len(t.sparse), MinTableCapacity)
	for n <= int(e) {
		n *= 2
	}

	sparse := make([]int32, n)
	copy(sparse, t.sparse)
	for i := len(t.sparse); i < n; i++ {
		sparse[i] = sparseTombstone
	}
	t.sparse = sparse
	t.mask.EnsureCapacity(n)
}

// ensureDense grows the dense arrays geometrically until n values fit.
func (t *ComponentTable[T]) ensureDense(n int) {
	if n <= len(t.dense) {
		return
	}
	c := max(len(t.dense), MinTableCapacity)
	for c < n {
		c *= 2
	}

	dense := make([]T, c)
	copy(dense, t.dense[:t.length])
	t.dense = dense

	entities := make([]Entity, c)
	copy(entities, t.entities[:t.length])
	t.entities = entities
}

// validate checks that sparse, dense and mask agree.
func (t *ComponentTable[T]) validate() error {
	for i := 0; i < t.length; i++ {
		e := t.entities[i]
		if e < 0 || int(e) >= len(t.sparse) || int(t.sparse[e]) != i {
			return eris.Wrapf(ErrCorruptTable, "%s: dense index %d maps to entity %d which does not map back", t.name, i, e)
		}
		if !t.mask.Has(int(e)) {
			return eris.Wrapf(ErrCorruptTable, "%s: entity %d missing from mask", t.name, e)
		}
	}
	if n := t.mask.Count(); n != t.length {
		return eris.Wrapf(ErrCorruptTable, "%s: mask holds %d entities, table holds %d", t.name, n, t.length)
	}
	return nil
}
