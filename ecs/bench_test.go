package ecs_test

import (
	"testing"

	"github.com/plus3/sparsecs/ecs"
)

func populate(storage *ecs.Storage, n int) {
	positions := ecs.Table[Position](storage)
	velocities := ecs.Table[Velocity](storage)
	radii := ecs.Table[Radius](storage)
	for i := range n {
		e := storage.NextEntity()
		positions.Add(e, Position{X: float32(i)})
		if i%2 == 0 {
			velocities.Add(e, Velocity{DX: 1})
		}
		if i%7 == 0 {
			radii.Add(e, 1)
		}
	}
}

func BenchmarkTableAdd(b *testing.B) {
	table := ecs.NewComponentTable[Position](0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Add(ecs.Entity(i), Position{X: 1.0, Y: 2.0})
	}
}

func BenchmarkTableAddRemove(b *testing.B) {
	table := ecs.NewComponentTable[Position](1024)
	for i := range 1024 {
		table.Add(ecs.Entity(i), Position{})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := ecs.Entity(i % 1024)
		table.Remove(e)
		table.Add(e, Position{})
	}
}

func BenchmarkTableValue(b *testing.B) {
	table := ecs.NewComponentTable[Position](0)
	for i := range 1024 {
		table.Add(ecs.Entity(i), Position{})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Value(ecs.Entity(i & 1023)).X++
	}
}

func BenchmarkViewCached(b *testing.B) {
	storage := newTestStorage()
	populate(storage, 10_000)
	view := ecs.NewView2[Position, Velocity](storage, ecs.Exclude[Radius]())
	view.Entities()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = view.Entities()
	}
}

func BenchmarkViewRecompute(b *testing.B) {
	storage := newTestStorage()
	populate(storage, 10_000)
	view := ecs.NewView2[Position, Velocity](storage, ecs.Exclude[Radius]())
	positions := ecs.Table[Position](storage)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		positions.Remove(0)
		positions.Add(0, Position{})
		_ = view.Entities()
	}
}

func BenchmarkViewIterate(b *testing.B) {
	storage := newTestStorage()
	populate(storage, 10_000)
	view := ecs.NewView2[Position, Velocity](storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, e := range view.Entities() {
			view.Get1(e).X += view.Get2(e).DX
		}
	}
}

func BenchmarkFreeListChurn(b *testing.B) {
	a := ecs.NewFreeListAllocator()
	live := make([]ecs.Entity, 4096)
	for i := range live {
		live[i] = a.Allocate()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := (i * 7919) % len(live)
		a.Return(live[j])
		live[j] = a.Allocate()
	}
}

func BenchmarkBitsetIntersect(b *testing.B) {
	x := ecs.NewBitset(1 << 16)
	y := ecs.NewBitset(1 << 16)
	for i := 0; i < 1<<16; i += 3 {
		x.Set(i, true)
		y.Set(i*2%(1<<16), true)
	}
	scratch := ecs.NewBitset(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scratch.CopyFrom(x)
		scratch.Intersect(y, false)
		_ = scratch.Count()
	}
}
