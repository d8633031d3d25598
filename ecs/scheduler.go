package ecs

import (
	"context"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	Track           Track
	SystemCount     int
	StageCount      int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type scheduledSystem struct {
	name    string
	system  System
	access  Access
	queries []queryExecutor
	stage   int
	stats   systemStatsInternal
}

// Scheduler is the compiled, immutable schedule of one track. Systems are grouped into
// stages: stages run in order, members of a stage run concurrently on the worker pool.
type Scheduler struct {
	track   Track
	storage *Storage
	pool    *WorkerPool
	systems []*scheduledSystem // topological order
	stages  [][]*scheduledSystem
}

// Track returns the name of the track this scheduler runs.
func (s *Scheduler) Track() Track {
	return s.track
}

func (s *scheduledSystem) run(frame *UpdateFrame) {
	for _, q := range s.queries {
		q.Execute()
	}

	start := time.Now()
	s.system.Execute(frame)
	duration := time.Since(start)

	stats := &s.stats
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration

	if stats.executionCount == 1 || duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// runFrame executes every stage against frame without flushing its commands.
func (s *Scheduler) runFrame(frame *UpdateFrame) {
	for _, stage := range s.stages {
		if len(stage) == 1 {
			stage[0].run(frame)
			continue
		}

		tasks := make([]func(), len(stage))
		for i, member := range stage {
			tasks[i] = func() { member.run(frame) }
		}
		s.pool.Run(tasks...)
	}
}

// Once executes all systems of the track once with the given delta time and flushes
// the commands they queued, including commands queued by deferred functions.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(s.track, dt, s.storage)
	s.runFrame(frame)
	for frame.Commands.Pending() > 0 {
		frame.Commands.Flush(s.storage)
	}
}

// Run drives this track alone, calling Once at the given interval until the context
// is cancelled. Applications that run several tracks dispatch them through a
// Dispatcher instead.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// Order returns system names in the compiled execution order.
func (s *Scheduler) Order() []string {
	names := make([]string, len(s.systems))
	for i, sys := range s.systems {
		names[i] = sys.name
	}
	return names
}

// Stages returns system names grouped by stage.
func (s *Scheduler) Stages() [][]string {
	stages := make([][]string, len(s.stages))
	for i, stage := range s.stages {
		for _, member := range stage {
			stages[i] = append(stages[i], member.name)
		}
	}
	return stages
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		Track:       s.track,
		SystemCount: len(s.systems),
		StageCount:  len(s.stages),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, sys := range s.systems {
		internal := sys.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           sys.name,
			Stage:          sys.stage,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
