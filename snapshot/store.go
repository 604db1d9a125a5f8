// Package snapshot saves and restores a Storage through its byte-stream persistence hook.
// It only moves opaque blobs around; the encoding is entirely Storage.Serialize's.
package snapshot

import (
	"bytes"
	"context"
	"sync"

	"github.com/plus3/sparsecs/ecs"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by Load when no snapshot exists under the key.
var ErrNotFound = eris.New("snapshot not found")

// Store persists snapshot blobs by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// Save serializes storage and writes it to store under key.
func Save(ctx context.Context, store Store, key string, storage *ecs.Storage) error {
	var buf bytes.Buffer
	if err := storage.Serialize(&buf); err != nil {
		return eris.Wrapf(err, "failed to serialize snapshot %s", key)
	}
	if err := store.Save(ctx, key, buf.Bytes()); err != nil {
		return eris.Wrapf(err, "failed to save snapshot %s", key)
	}
	storage.Logger().Debug().Str("key", key).Int("bytes", buf.Len()).Msg("saved snapshot")
	return nil
}

// Restore loads the snapshot under key into storage, replacing its tables.
func Restore(ctx context.Context, store Store, key string, storage *ecs.Storage) error {
	data, err := store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := storage.Deserialize(bytes.NewReader(data)); err != nil {
		return eris.Wrapf(err, "failed to restore snapshot %s", key)
	}
	storage.Logger().Debug().Str("key", key).Int("bytes", len(data)).Msg("restored snapshot")
	return nil
}

// MemoryStore keeps snapshots in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = bytes.Clone(data)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "key %s", key)
	}
	return bytes.Clone(data), nil
}
