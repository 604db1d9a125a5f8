package ecs

// SoftTable is a non-forcing handle to the T table of a storage. Resolving it never creates
// the table; Force does. Once the table exists the handle caches it.
type SoftTable[T any] struct {
	storage *Storage
	id      ComponentID
	table   *ComponentTable[T]
}

// SoftTableOf returns a handle to the T table of storage without creating the table.
func SoftTableOf[T any](storage *Storage) SoftTable[T] {
	return SoftTable[T]{
		storage: storage,
		id:      RegisterComponent[T](storage.registry),
	}
}

// ID returns the component id the handle resolves.
func (h *SoftTable[T]) ID() ComponentID {
	return h.id
}

// Get returns the table, or nil if nothing created it yet.
func (h *SoftTable[T]) Get() *ComponentTable[T] {
	if h.table != nil {
		return h.table
	}
	if t := h.storage.table(h.id); t != nil {
		h.table = t.(*ComponentTable[T])
	}
	return h.table
}

// Force returns the table, creating it if needed.
func (h *SoftTable[T]) Force() *ComponentTable[T] {
	if h.table == nil {
		h.table = h.storage.forceTable(h.id).(*ComponentTable[T])
	}
	return h.table
}

// Accessor reads and removes T components of single entities. It is the plain counterpart
// of a typed view slot for code that already knows which entity it wants.
type Accessor[T any] struct {
	table SoftTable[T]
}

// NewAccessor binds an accessor to the T table of storage.
func NewAccessor[T any](storage *Storage) *Accessor[T] {
	return &Accessor[T]{table: SoftTableOf[T](storage)}
}

// Init binds the accessor to storage. The scheduler calls it for Accessor fields of systems.
func (a *Accessor[T]) Init(storage *Storage) {
	a.table = SoftTableOf[T](storage)
}

// Has reports whether e has a T component.
func (a *Accessor[T]) Has(e Entity) bool {
	t := a.table.Get()
	return t != nil && t.Has(e)
}

// Get returns e's T component, or nil if it has none.
func (a *Accessor[T]) Get(e Entity) *T {
	t := a.table.Get()
	if t == nil {
		return nil
	}
	v, _ := t.TryValue(e)
	return v
}

// Remove drops e's T component, reporting whether it had one.
func (a *Accessor[T]) Remove(e Entity) bool {
	t := a.table.Get()
	return t != nil && t.Remove(e)
}

// Add stores v as e's T component, replacing any existing value.
func (a *Accessor[T]) Add(e Entity, v T) {
	a.table.Force().AddOrReplace(e, v)
}
