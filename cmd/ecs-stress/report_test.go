package main

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3, 1, 2}}
	s.Finalize()
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(3), s.Max)
	assert.Equal(t, time.Duration(2), s.Avg)
}

func TestReportGenerate(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MoveSystem{})

	e := storage.NextEntity()
	ecs.Table[Position](storage).Add(e, Position{})
	ecs.Table[Velocity](storage).Add(e, Velocity{DX: 1})
	scheduler.Once(1)

	report := &Report{
		Entities:    1,
		Allocator:   ecs.AllocatorFreeList,
		Storage:     storage.CollectStats(),
		SnapshotKey: "ecs-stress:now",
	}

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Allocator:** freelist")
	assert.Contains(t, out, "**Alive Entities:** 1")
	assert.Contains(t, out, "**Validation:** ok")
	assert.Contains(t, out, "**Snapshot:** ecs-stress:now")
	assert.Contains(t, out, "main.Velocity: 1 entities")
	assert.Equal(t, float32(1), ecs.Table[Position](storage).Value(e).X)
}

func TestSystemsSurviveRingWrap(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry, ecs.WithAllocator(ecs.NewRingAllocator(16)))

	rng := rand.New(rand.NewPCG(3, 9))
	for range 12 {
		spawn(storage, rng)
	}

	churn := &ChurnSystem{Rate: 0.5, rng: rng}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MoveSystem{})
	scheduler.Register(&FreezeSystem{})
	scheduler.Register(&DamageSystem{rng: rng})
	scheduler.Register(churn)

	require.NotPanics(t, func() {
		for range 200 {
			scheduler.Once(0.016)
		}
	})
	assert.Positive(t, churn.Removed)
	assert.LessOrEqual(t, len(storage.Entities()), 16)
	for _, e := range storage.Entities() {
		assert.Less(t, e, ecs.Entity(16))
	}
}
