package ecs

// Commands provides a buffer for deferred structural changes that are applied at the end
// of a tick. Systems record into it while iterating views and the scheduler flushes it
// after every system has run.
type Commands struct {
	deletes []Entity
	adds    []addCommand
	removes []removeCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type addCommand struct {
	entity Entity
	apply  func(s *Storage, e Entity)
}

type removeCommand struct {
	entity Entity
	id     ComponentID
}

// Defer queues a function to run after all other commands of the flush.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// RemoveEntity queues the removal of e from every table.
func (c *Commands) RemoveEntity(e Entity) {
	c.deletes = append(c.deletes, e)
}

// Remove queues the removal of e's component with the given id.
func (c *Commands) Remove(e Entity, id ComponentID) {
	c.removes = append(c.removes, removeCommand{entity: e, id: id})
}

// Add queues storing v as e's T component, replacing any existing value.
func Add[T any](c *Commands, e Entity, v T) {
	c.adds = append(c.adds, addCommand{
		entity: e,
		apply: func(s *Storage, e Entity) {
			Table[T](s).AddOrReplace(e, v)
		},
	})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush flushes all commands to the provided storage, reseting the buffer state.
// Adds and removes targeting an entity deleted in the same flush are skipped.
func (c *Commands) Flush(storage *Storage) {
	var deleted map[Entity]struct{}
	if len(c.deletes) > 0 {
		deleted = make(map[Entity]struct{}, len(c.deletes))
	}
	for _, e := range c.deletes {
		storage.RemoveEntity(e)
		deleted[e] = struct{}{}
	}

	for _, cmd := range c.removes {
		if _, ok := deleted[cmd.entity]; ok {
			continue
		}
		if t := storage.table(cmd.id); t != nil {
			t.Remove(cmd.entity)
		}
	}

	for _, cmd := range c.adds {
		if _, ok := deleted[cmd.entity]; ok {
			continue
		}
		cmd.apply(storage, cmd.entity)
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.adds)
	clear(c.defers)
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
