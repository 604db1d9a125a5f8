package snapshot_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/plus3/sparsecs/ecs"
	"github.com/plus3/sparsecs/snapshot"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y float64
}

type Label struct {
	Text string
}

func newStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Label](registry)
	return ecs.NewStorage(registry)
}

func populated(t *testing.T) *ecs.Storage {
	t.Helper()
	storage := newStorage()
	for i := range 10 {
		e := storage.NextEntity()
		ecs.Table[Position](storage).Add(e, Position{X: float64(i), Y: 2})
		if i%3 == 0 {
			ecs.Table[Label](storage).Add(e, Label{Text: "third"})
		}
	}
	storage.RemoveEntity(4)
	return storage
}

func newRedisStore(t *testing.T) (*snapshot.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return snapshot.NewRedisStore(client, "sparsecs"), s
}

func testRoundTrip(t *testing.T, store snapshot.Store) {
	ctx := context.Background()
	src := populated(t)
	require.NoError(t, snapshot.Save(ctx, store, "tick-1", src))

	dst := newStorage()
	require.NoError(t, snapshot.Restore(ctx, store, "tick-1", dst))

	assert.Equal(t, src.Entities(), dst.Entities())
	for e, p := range ecs.Table[Position](src).All() {
		assert.Equal(t, *p, *ecs.Table[Position](dst).Value(e))
	}
	assert.Equal(t, ecs.Table[Label](src).Len(), ecs.Table[Label](dst).Len())
	require.NoError(t, dst.Validate())
	assert.Equal(t, ecs.Entity(4), dst.NextEntity(), "allocator state follows the snapshot")

	err := snapshot.Restore(ctx, store, "missing", newStorage())
	assert.True(t, eris.Is(err, snapshot.ErrNotFound))
}

func TestMemoryStore(t *testing.T) {
	testRoundTrip(t, snapshot.NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	store, s := newRedisStore(t)
	testRoundTrip(t, store)
	assert.True(t, s.Exists("sparsecs:tick-1"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, s := newRedisStore(t)
	s.Close()

	err := snapshot.Save(context.Background(), store, "k", populated(t))
	assert.Error(t, err)
	assert.False(t, eris.Is(err, snapshot.ErrNotFound))
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	data := []byte{1, 2, 3}
	require.NoError(t, store.Save(ctx, "k", data))
	data[0] = 9

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}
