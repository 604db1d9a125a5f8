package ecs

import "github.com/rotisserie/eris"

var (
	// ErrDuplicateEntity is raised by Add when the entity is already present in the table.
	// Only checked builds detect it; release builds corrupt the table instead.
	ErrDuplicateEntity = eris.New("entity already present")

	// ErrAbsentEntity is raised by Value when the entity has no component in the table.
	// Only checked builds detect it.
	ErrAbsentEntity = eris.New("entity not present")

	// ErrUnknownComponent is returned when a serialized table names a component type
	// that was never registered.
	ErrUnknownComponent = eris.New("unknown component type")

	// ErrAllocatorMisuse is returned by Storage.Validate when the allocator's bookkeeping
	// disagrees with entity liveness, e.g. a returned entity that is still alive.
	ErrAllocatorMisuse = eris.New("entity allocator misuse")

	// ErrCorruptTable is returned by Storage.Validate when a table's sparse/dense maps disagree.
	ErrCorruptTable = eris.New("component table corrupted")
)
