package main

import (
	"math/rand/v2"

	"github.com/plus3/sparsecs/ecs"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int32
}

// Hit is a single-frame damage signal.
type Hit struct {
	Damage int32
}

type Frozen struct{}

func registerComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Hit](registry)
	ecs.RegisterComponent[Frozen](registry)
}

// spawn creates one entity with a random subset of components. A ring allocator hands out
// ids without tracking liveness, so a recycled id that is still alive is retired first.
func spawn(storage *ecs.Storage, rng *rand.Rand) ecs.Entity {
	e := storage.NextEntity()
	if storage.IsAlive(e) {
		storage.RemoveEntity(e)
	}
	ecs.Table[Position](storage).Add(e, Position{X: rng.Float32() * 100, Y: rng.Float32() * 100})
	if rng.IntN(2) == 0 {
		ecs.Table[Velocity](storage).Add(e, Velocity{DX: rng.Float32() - 0.5, DY: rng.Float32() - 0.5})
	}
	if rng.IntN(3) > 0 {
		ecs.Table[Health](storage).Add(e, Health{Current: 100})
	}
	if rng.IntN(10) == 0 {
		ecs.Table[Frozen](storage).Add(e, Frozen{})
	}
	return e
}

type MoveSystem struct {
	Bodies ecs.View2[Position, Velocity]
}

func (s *MoveSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for _, e := range s.Bodies.Entities() {
		pos, vel := s.Bodies.Get1(e), s.Bodies.Get2(e)
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt
	}
}

// FreezeSystem keeps an exclusion view so the excluded-union path is exercised every tick.
type FreezeSystem struct {
	bodies *ecs.View1[Velocity]
	Moving int
}

func (s *FreezeSystem) Execute(frame *ecs.UpdateFrame) {
	if s.bodies == nil {
		s.bodies = ecs.NewView1[Velocity](frame.Storage, ecs.Exclude[Frozen]())
	}
	s.Moving = s.bodies.Len()
}

// DamageSystem raises a hit on a few random healthy entities per tick and applies the hits
// raised in the previous step of the same tick.
type DamageSystem struct {
	Targets ecs.View1[Health]
	Hits    ecs.View2[Hit, Health]
	rng     *rand.Rand
}

func (s *DamageSystem) Execute(frame *ecs.UpdateFrame) {
	targets := s.Targets.Entities()
	hits := ecs.Table[Hit](frame.Storage)
	for range min(len(targets), 8) {
		e := targets[s.rng.IntN(len(targets))]
		if !hits.Has(e) {
			hits.AddSingleFrame(e, Hit{Damage: 10 + s.rng.Int32N(20)})
		}
	}

	for _, e := range s.Hits.Entities() {
		health := s.Hits.Get2(e)
		health.Current -= s.Hits.Get1(e).Damage
		if health.Current <= 0 {
			frame.Commands.RemoveEntity(e)
		}
	}
}

// ChurnSystem removes and respawns a fixed share of the population each tick so the
// allocator and the table compaction paths stay hot.
type ChurnSystem struct {
	Everyone ecs.View1[Position]
	Rate     float64
	Removed  int64
	rng      *rand.Rand
}

func (s *ChurnSystem) Execute(frame *ecs.UpdateFrame) {
	entities := s.Everyone.Entities()
	n := int(float64(len(entities)) * s.Rate)
	for range n {
		frame.Commands.RemoveEntity(entities[s.rng.IntN(len(entities))])
	}
	s.Removed += int64(n)

	rng := s.rng
	storage := frame.Storage
	frame.Commands.Defer(func() {
		for range n {
			spawn(storage, rng)
		}
	})
}
