package ecs

// Entity is an opaque handle for a logical object. Entities carry no data; they index
// into component tables. NullEntity is the reserved "no entity" value.
type Entity int32

// NullEntity is the sentinel for "no entity".
const NullEntity Entity = -1

// IsNull reports whether e is the null sentinel (or any other negative value).
func (e Entity) IsNull() bool {
	return e < 0
}
