package ecs

import (
	"reflect"
)

// ComponentID is the dense index a ComponentRegistry assigns to a component type.
type ComponentID uint32

type componentInfo struct {
	typ     reflect.Type
	name    string
	factory func(id ComponentID, capacity int) iComponentTable
}

// ComponentRegistry assigns component ids. Each Storage is built on a registry; several
// storages may share one so the same type has the same id everywhere. Ids are handed out
// monotonically the first time a type is seen, which keeps them deterministic for a given
// registration order.
type ComponentRegistry struct {
	ids    map[reflect.Type]ComponentID
	byName map[string]ComponentID
	infos  []componentInfo
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids:    make(map[reflect.Type]ComponentID),
		byName: make(map[string]ComponentID),
	}
}

// RegisterComponent returns the id for T, assigning the next free id on first use.
// Registration is idempotent. Explicit registration is only needed for types that must be
// known before first use, such as tables read back by Storage.Deserialize.
func RegisterComponent[T any](r *ComponentRegistry) ComponentID {
	t := reflect.TypeFor[T]()
	if id, ok := r.ids[t]; ok {
		return id
	}

	id := ComponentID(len(r.infos))
	name := t.String()
	r.ids[t] = id
	r.byName[name] = id
	r.infos = append(r.infos, componentInfo{
		typ:  t,
		name: name,
		factory: func(id ComponentID, capacity int) iComponentTable {
			return newComponentTable[T](id, capacity)
		},
	})
	return id
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.infos)
}

// Name returns the type name registered under id.
func (r *ComponentRegistry) Name(id ComponentID) string {
	return r.infos[id].name
}

// Type returns the Go type registered under id.
func (r *ComponentRegistry) Type(id ComponentID) reflect.Type {
	return r.infos[id].typ
}

// Lookup finds the id of a registered type by its name.
func (r *ComponentRegistry) Lookup(name string) (ComponentID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *ComponentRegistry) newTable(id ComponentID, capacity int) iComponentTable {
	return r.infos[id].factory(id, capacity)
}
