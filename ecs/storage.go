package ecs

import (
	"encoding/binary"
	"io"

	"github.com/kamstrup/intmap"
	"github.com/plus3/sparsecs/internal/assert"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Storage owns one ComponentTable per component type plus singleton slots. Tables are
// created lazily the first time they are forced and live until Destroy. An entity is alive
// while at least one table holds it; there is no separate entity registry.
//
// Storage is not safe for concurrent use. All mutation and all view evaluation happen on
// one update goroutine.
type Storage struct {
	registry      *ComponentRegistry
	tables        []iComponentTable
	singletons    []any
	allocator     EntityAllocator
	tableCapacity int
	logger        zerolog.Logger

	views    *intmap.Map[uint32, *View]
	nextView uint32

	destroyed bool
}

// Option configures a Storage.
type Option func(*Storage)

// WithAllocator sets the entity allocator. The default is a FreeListAllocator.
func WithAllocator(a EntityAllocator) Option {
	return func(s *Storage) {
		s.allocator = a
	}
}

// WithTableCapacity sets the initial capacity of lazily created tables.
func WithTableCapacity(n int) Option {
	return func(s *Storage) {
		s.tableCapacity = max(n, MinTableCapacity)
	}
}

// WithLogger sets the logger used for table lifecycle and validation messages.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

// NewStorage creates a storage over the given component registry.
func NewStorage(registry *ComponentRegistry, opts ...Option) *Storage {
	s := &Storage{
		registry:      registry,
		allocator:     NewFreeListAllocator(),
		tableCapacity: MinTableCapacity,
		logger:        zerolog.Nop(),
		views:         intmap.New[uint32, *View](16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the component registry the storage was built with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Allocator returns the entity allocator.
func (s *Storage) Allocator() EntityAllocator {
	return s.allocator
}

// Logger returns the storage logger.
func (s *Storage) Logger() *zerolog.Logger {
	return &s.logger
}

// NextEntity allocates a new entity id. The entity is not alive until a component is added.
func (s *Storage) NextEntity() Entity {
	return s.allocator.Allocate()
}

// table returns the table for id, or nil if it was never forced.
func (s *Storage) table(id ComponentID) iComponentTable {
	if int(id) >= len(s.tables) {
		return nil
	}
	return s.tables[id]
}

// forceTable returns the table for id, creating it on first access.
func (s *Storage) forceTable(id ComponentID) iComponentTable {
	assert.That(!s.destroyed, "storage used after Destroy")

	if int(id) >= len(s.tables) {
		tables := make([]iComponentTable, s.registry.Len())
		copy(tables, s.tables)
		s.tables = tables
	}
	if t := s.tables[id]; t != nil {
		return t
	}

	t := s.registry.newTable(id, s.tableCapacity)
	s.tables[id] = t
	s.logger.Debug().
		Str("component", t.Name()).
		Uint32("id", uint32(id)).
		Int("capacity", t.Cap()).
		Msg("created component table")
	return t
}

// Table returns the table for T, creating it on first access.
func Table[T any](s *Storage) *ComponentTable[T] {
	id := RegisterComponent[T](s.registry)
	return s.forceTable(id).(*ComponentTable[T])
}

// TableByID returns the type-erased table for id without creating it. ok is false when
// the table does not exist yet.
func (s *Storage) TableByID(id ComponentID) (AnyTable, bool) {
	t := s.table(id)
	if t == nil {
		return nil, false
	}
	return t, true
}

// RemoveEntity removes e from every table. If e was alive it is handed back to the allocator.
func (s *Storage) RemoveEntity(e Entity) {
	removed := false
	for _, t := range s.tables {
		if t != nil && t.Remove(e) {
			removed = true
		}
	}
	if removed {
		s.allocator.Return(e)
	}
}

// IsAlive reports whether any table holds e.
func (s *Storage) IsAlive(e Entity) bool {
	for _, t := range s.tables {
		if t != nil && t.Has(e) {
			return true
		}
	}
	return false
}

// Entities returns every alive entity in ascending order.
func (s *Storage) Entities() []Entity {
	var alive Bitset
	for _, t := range s.tables {
		if t != nil {
			alive.Union(t.Mask())
		}
	}
	out := make([]Entity, alive.Count())
	alive.fillEntities(out)
	return out
}

// ClearSingleFrameEntities drops every single-frame component added since the last call.
// The tick driver calls it exactly once per tick, after all per-tick logic has run.
func (s *Storage) ClearSingleFrameEntities() {
	for _, t := range s.tables {
		if t != nil {
			t.ClearSingleFrameEntities()
		}
	}
}

// Destroy disposes every stored value and singleton, releases the scratch memory of every
// registered view and drops all tables. The storage must not be used afterwards.
func (s *Storage) Destroy() {
	if s.destroyed {
		return
	}

	for v := range s.views.Values() {
		v.releaseScratch()
	}
	s.views.Clear()

	for _, t := range s.tables {
		if t != nil {
			t.destroy()
		}
	}
	for id, v := range s.singletons {
		if v != nil {
			disposeSingleton(v)
			s.singletons[id] = nil
		}
	}

	s.logger.Debug().Int("tables", len(s.tables)).Msg("destroyed storage")
	s.tables = nil
	s.singletons = nil
	s.destroyed = true
}

// registerView records v so Destroy can release its scratch memory.
func (s *Storage) registerView(v *View) uint32 {
	s.nextView++
	s.views.Put(s.nextView, v)
	return s.nextView
}

func (s *Storage) unregisterView(id uint32) {
	s.views.Del(id)
}

// Validate is the opt-in consistency pass: it checks every table's sparse/dense invariants
// and, when the allocator supports it, cross-checks allocator bookkeeping against liveness.
// It is diagnostic only and never runs implicitly.
func (s *Storage) Validate() error {
	for _, t := range s.tables {
		if t == nil {
			continue
		}
		if err := t.validate(); err != nil {
			s.logger.Warn().Err(err).Str("component", t.Name()).Msg("table failed validation")
			return err
		}
	}

	auditor, ok := s.allocator.(Auditor)
	if !ok {
		return nil
	}

	alive := s.Entities()
	set := intmap.NewSet[Entity](len(alive))
	for _, e := range alive {
		set.Add(e)
	}
	if err := auditor.Audit(set.Has, alive); err != nil {
		s.logger.Warn().Err(err).Int("alive", len(alive)).Msg("allocator failed validation")
		return err
	}
	return nil
}

// Serialize writes every existing table: the table count, then each table's component name
// followed by the table data.
func (s *Storage) Serialize(w io.Writer) error {
	count := 0
	for _, t := range s.tables {
		if t != nil {
			count++
		}
	}
	if err := writeUvarint(w, uint64(count)); err != nil {
		return eris.Wrap(err, "failed to write table count")
	}

	for _, t := range s.tables {
		if t == nil {
			continue
		}
		if err := writeBlob(w, []byte(t.Name())); err != nil {
			return eris.Wrapf(err, "failed to write table name %s", t.Name())
		}
		if err := t.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize clears every table and loads the tables written by Serialize. Every component
// type in the stream must be registered in the storage's registry. Allocators that support
// it are reseeded from the loaded entities.
func (s *Storage) Deserialize(r io.Reader) error {
	br := asByteReader(r)

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return eris.Wrap(err, "failed to read table count")
	}

	for _, t := range s.tables {
		if t != nil {
			t.Clear()
		}
	}

	for i := uint64(0); i < count; i++ {
		name, err := readBlob(br)
		if err != nil {
			return eris.Wrap(err, "failed to read table name")
		}
		id, ok := s.registry.Lookup(string(name))
		if !ok {
			return eris.Wrapf(ErrUnknownComponent, "table %q", name)
		}
		if err := s.forceTable(id).Deserialize(br); err != nil {
			return err
		}
	}

	if reseeder, ok := s.allocator.(Reseeder); ok {
		reseeder.Reseed(s.Entities())
	}
	s.logger.Debug().Uint64("tables", count).Msg("deserialized storage")
	return nil
}
