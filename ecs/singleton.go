package ecs

// Singleton slots hold one value per component type that belongs to no entity. They share
// component ids with tables, so a type can be both a singleton and a regular component.

func (s *Storage) singletonSlot(id ComponentID) any {
	if int(id) >= len(s.singletons) {
		return nil
	}
	return s.singletons[id]
}

// SetSingleton stores v as the T singleton, disposing any previous value, and returns a
// pointer to the stored copy.
func SetSingleton[T any](s *Storage, v T) *T {
	id := RegisterComponent[T](s.registry)
	if int(id) >= len(s.singletons) {
		singletons := make([]any, s.registry.Len())
		copy(singletons, s.singletons)
		s.singletons = singletons
	}
	if old := s.singletons[id]; old != nil {
		disposeSingleton(old)
	}

	p := new(T)
	*p = v
	s.singletons[id] = p
	return p
}

// GetSingleton returns the T singleton and whether it is set.
func GetSingleton[T any](s *Storage) (*T, bool) {
	p, ok := s.singletonSlot(RegisterComponent[T](s.registry)).(*T)
	return p, ok
}

// RemoveSingleton disposes and clears the T singleton, reporting whether it was set.
func RemoveSingleton[T any](s *Storage) bool {
	id := RegisterComponent[T](s.registry)
	old := s.singletonSlot(id)
	if old == nil {
		return false
	}
	disposeSingleton(old)
	s.singletons[id] = nil
	return true
}

func disposeSingleton(v any) {
	if d, ok := v.(Disposer); ok {
		d.Dispose()
	}
}

// Singleton is a typed handle to the T singleton of a storage, for use as a system field.
type Singleton[T any] struct {
	storage *Storage
	id      ComponentID
}

// NewSingleton returns a handle to the T singleton. If the singleton is not set yet it is
// created from initializer, or from the zero value.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if _, ok := GetSingleton[T](storage); !ok {
		var v T
		if len(initializer) > 0 {
			v = initializer[0]
		}
		SetSingleton(storage, v)
	}
	return &Singleton[T]{
		storage: storage,
		id:      RegisterComponent[T](storage.registry),
	}
}

// Init binds the handle to storage without creating the singleton.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.id = RegisterComponent[T](storage.registry)
}

// Get returns the singleton, or nil if it is not set.
func (s *Singleton[T]) Get() *T {
	if s.storage == nil {
		return nil
	}
	p, _ := s.storage.singletonSlot(s.id).(*T)
	return p
}

// Exists reports whether the singleton is set.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
