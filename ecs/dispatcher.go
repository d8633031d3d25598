package ecs

import "slices"

// Dispatcher is the immutable runtime form of a Builder: one compiled Scheduler per track.
type Dispatcher struct {
	storage    *Storage
	schedulers map[Track]*Scheduler
	tracks     []Track
}

// Dispatch runs exactly one frame of the track and returns once every system finished
// and the frame's commands were flushed. Dispatching an unknown track panics.
func (d *Dispatcher) Dispatch(track Track, dt float64) {
	s, ok := d.schedulers[track]
	if !ok {
		panic("unknown track " + string(track))
	}
	s.Once(dt)
}

// Scheduler returns the compiled schedule of a track, or nil if the track is unknown.
func (d *Dispatcher) Scheduler(track Track) *Scheduler {
	return d.schedulers[track]
}

// Tracks returns track names in the order they were first configured.
func (d *Dispatcher) Tracks() []Track {
	return slices.Clone(d.tracks)
}

// Storage returns the storage every track runs against.
func (d *Dispatcher) Storage() *Storage {
	return d.storage
}
