package ecs_test

import (
	"encoding/binary"
	"io"

	"github.com/plus3/sparsecs/ecs"
	checks "github.com/plus3/sparsecs/internal/assert"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Acceleration struct {
	DX, DY float32
}

type Velocity struct {
	DX, DY float32
}

type Radius float32

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

// Hit is used as a single-frame signal component.
type Hit struct {
	Damage int
}

// Handle counts Dispose calls through a shared counter.
type Handle struct {
	ID       int
	Disposed *int
}

func (h *Handle) Dispose() {
	*h.Disposed++
}

// Packed encodes itself instead of going through JSON.
type Packed struct {
	A uint32
	B uint32
}

func (p *Packed) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, p)
}

func (p *Packed) Deserialize(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, p)
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Acceleration](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Radius](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Hit](registry)
	ecs.RegisterComponent[Handle](registry)
	ecs.RegisterComponent[Packed](registry)
	return registry
}

func newTestStorage(opts ...ecs.Option) *ecs.Storage {
	return ecs.NewStorage(newTestRegistry(), opts...)
}

// checksEnabled reports whether programmer-error checks are compiled in.
func checksEnabled() bool {
	return checks.Enabled
}
