package ecs

// UpdateFrame is handed to every system of a track for one dispatch.
type UpdateFrame struct {
	Track     Track
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(track Track, dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		Track:     track,
		DeltaTime: dt,
		Commands:  NewCommands(),
		Storage:   storage,
	}
}
