package game

import (
	"context"
	"time"
)

// FixedSource is an EventSource producing frames of a fixed length, for headless runs
// and tests. Script holds the events injected on a given zero-based frame.
type FixedSource struct {
	// Frames limits the run. Zero or less runs until the context is done.
	Frames    int
	DeltaTime float64
	// Interval paces frames in wall time. Zero runs them back to back.
	Interval time.Duration
	Script   map[int][]Event

	frame int
}

// Next returns the scripted events of the current frame and the fixed delta, until
// Frames frames were produced or the context is done while waiting for Interval.
func (s *FixedSource) Next(ctx context.Context) ([]Event, float64, bool) {
	if s.Frames > 0 && s.frame >= s.Frames {
		return nil, 0, false
	}

	if s.Interval > 0 {
		timer := time.NewTimer(s.Interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, 0, false
		case <-timer.C:
		}
	}

	events := s.Script[s.frame]
	s.frame++
	return events, s.DeltaTime, true
}

// Frame returns how many frames were produced.
func (s *FixedSource) Frame() int {
	return s.frame
}
