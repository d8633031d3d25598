package ecs

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many systems of one stage execute at the same time.
// A single pool is shared by every track of a Dispatcher.
type WorkerPool struct {
	workers int
}

// NewWorkerPool creates a pool running at most workers tasks at once.
// A non-positive value means runtime.GOMAXPROCS(0).
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{workers: workers}
}

// Workers returns the concurrency limit.
func (p *WorkerPool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run executes every task and returns once all of them have finished.
// A nil pool or a pool of one worker runs the tasks in order on the calling goroutine.
func (p *WorkerPool) Run(tasks ...func()) {
	if p == nil || p.workers <= 1 || len(tasks) <= 1 {
		for _, task := range tasks {
			task()
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, task := range tasks {
		g.Go(func() error {
			task()
			return nil
		})
	}
	_ = g.Wait()
}
