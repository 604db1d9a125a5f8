package ecs

// UpdateFrame is handed to every system during a tick.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}
