package ecs

import "io"

// AnyTable is the type-erased surface of a ComponentTable.
type AnyTable interface {
	ID() ComponentID
	Name() string
	Has(e Entity) bool
	Remove(e Entity) bool
	Len() int
	Cap() int
	Version() uint32
	Mask() *Bitset
	Entities() []Entity
	Clear()
	ClearSingleFrameEntities()
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

// iComponentTable adds the lifecycle hooks only Storage may call.
type iComponentTable interface {
	AnyTable

	destroy()
	validate() error
}
