package ecs_test

import (
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingletons(t *testing.T) {
	storage := newTestStorage()

	_, ok := ecs.GetSingleton[Health](storage)
	assert.False(t, ok)

	p := ecs.SetSingleton(storage, Health{Current: 3})
	got, ok := ecs.GetSingleton[Health](storage)
	require.True(t, ok)
	assert.Same(t, p, got)

	got.Current = 4
	handle := ecs.NewSingleton[Health](storage, Health{Current: 100})
	assert.Equal(t, 4, handle.Get().Current, "an existing singleton is not re-initialized")
	assert.True(t, handle.Exists())

	assert.True(t, ecs.RemoveSingleton[Health](storage))
	assert.False(t, ecs.RemoveSingleton[Health](storage))
	assert.False(t, handle.Exists())
	assert.Nil(t, handle.Get())

	// Singletons and tables of the same type are independent.
	ecs.Table[Health](storage).Add(0, Health{Max: 1})
	_, ok = ecs.GetSingleton[Health](storage)
	assert.False(t, ok)
}

func TestSingletonReplaceDisposes(t *testing.T) {
	disposed := 0
	storage := newTestStorage()

	ecs.SetSingleton(storage, Handle{ID: 1, Disposed: &disposed})
	ecs.SetSingleton(storage, Handle{ID: 2, Disposed: &disposed})
	assert.Equal(t, 1, disposed)

	ecs.RemoveSingleton[Handle](storage)
	assert.Equal(t, 2, disposed)
}

func TestSingletonZeroHandle(t *testing.T) {
	var handle ecs.Singleton[Health]
	assert.Nil(t, handle.Get())
	assert.False(t, handle.Exists())
}
