package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Track names an independently dispatchable group of systems.
type Track string

var (
	// ErrCyclicDependency is returned by Build when a track's dependency graph has a cycle.
	ErrCyclicDependency = errors.New("ecs: cyclic system dependency")
	// ErrUnknownDependency is returned by Build when a system depends on a name not registered in its track.
	ErrUnknownDependency = errors.New("ecs: unknown system dependency")
	// ErrDuplicateSystem is returned by Build when two systems of one track share a name.
	ErrDuplicateSystem = errors.New("ecs: duplicate system name")
	// ErrEmptyName is returned by Build when a system has no name.
	ErrEmptyName = errors.New("ecs: empty system name")
)

// Bundle registers a set of related systems into one track.
type Bundle interface {
	Register(tb *TrackBuilder) error
}

// BundleFunc adapts a function to the Bundle interface.
type BundleFunc func(tb *TrackBuilder) error

func (f BundleFunc) Register(tb *TrackBuilder) error {
	return f(tb)
}

type systemEntry struct {
	name   string
	system System
	deps   []string
}

// TrackBuilder accumulates the systems of one track.
type TrackBuilder struct {
	track   Track
	entries []systemEntry
}

// Track returns the track being built.
func (tb *TrackBuilder) Track() Track {
	return tb.track
}

// Add registers a system under name, to run after every system named in deps.
func (tb *TrackBuilder) Add(system System, name string, deps ...string) *TrackBuilder {
	if system == nil {
		panic("cannot add nil system " + name)
	}
	tb.entries = append(tb.entries, systemEntry{
		name:   name,
		system: system,
		deps:   slices.Clone(deps),
	})
	return tb
}

// Has reports whether a system with the given name was already added.
func (tb *TrackBuilder) Has(name string) bool {
	return slices.ContainsFunc(tb.entries, func(e systemEntry) bool { return e.name == name })
}

// Builder is the mutable configuration phase of a Dispatcher.
type Builder struct {
	tracks map[Track]*TrackBuilder
	order  []Track
	errs   []error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{tracks: make(map[Track]*TrackBuilder)}
}

// Track returns the builder for a track, creating it on first use.
func (b *Builder) Track(track Track) *TrackBuilder {
	tb, ok := b.tracks[track]
	if !ok {
		tb = &TrackBuilder{track: track}
		b.tracks[track] = tb
		b.order = append(b.order, track)
	}
	return tb
}

// WithSystem registers a system in a track.
func (b *Builder) WithSystem(track Track, system System, name string, deps ...string) *Builder {
	b.Track(track).Add(system, name, deps...)
	return b
}

// WithBundle lets a bundle register its systems in a track. Registration errors are
// reported by Build.
func (b *Builder) WithBundle(track Track, bundle Bundle) *Builder {
	if err := bundle.Register(b.Track(track)); err != nil {
		b.errs = append(b.errs, fmt.Errorf("track %q: bundle %T: %w", track, bundle, err))
	}
	return b
}

// Build compiles every track into an immutable Scheduler bound to storage and pool.
// A nil pool runs every stage serially.
func (b *Builder) Build(storage *Storage, pool *WorkerPool) (*Dispatcher, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	d := &Dispatcher{
		storage:    storage,
		schedulers: make(map[Track]*Scheduler, len(b.tracks)),
		tracks:     slices.Clone(b.order),
	}
	for _, track := range b.order {
		s, err := compileTrack(b.tracks[track], storage, pool)
		if err != nil {
			return nil, err
		}
		d.schedulers[track] = s
	}
	return d, nil
}

func compileTrack(tb *TrackBuilder, storage *Storage, pool *WorkerPool) (*Scheduler, error) {
	index := make(map[string]int, len(tb.entries))
	for i, entry := range tb.entries {
		if entry.name == "" {
			return nil, fmt.Errorf("track %q: system %d (%T): %w", tb.track, i, entry.system, ErrEmptyName)
		}
		if _, dup := index[entry.name]; dup {
			return nil, fmt.Errorf("track %q: %q: %w", tb.track, entry.name, ErrDuplicateSystem)
		}
		index[entry.name] = i
	}

	n := len(tb.entries)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, entry := range tb.entries {
		for _, dep := range entry.deps {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("track %q: %q depends on %q: %w", tb.track, entry.name, dep, ErrUnknownDependency)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Kahn's algorithm, always taking the earliest registered ready system
	order := make([]int, 0, n)
	done := make([]bool, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var cycle []string
			for i := 0; i < n; i++ {
				if !done[i] {
					cycle = append(cycle, tb.entries[i].name)
				}
			}
			return nil, fmt.Errorf("track %q: among [%s]: %w", tb.track, strings.Join(cycle, ", "), ErrCyclicDependency)
		}
		done[next] = true
		order = append(order, next)
		for _, dependent := range dependents[next] {
			indegree[dependent]--
		}
	}

	s := &Scheduler{
		track:   tb.track,
		storage: storage,
		pool:    pool,
		systems: make([]*scheduledSystem, 0, n),
	}

	placed := make([]*scheduledSystem, n)
	for _, i := range order {
		entry := tb.entries[i]
		access, queries := bindSystem(entry.system, storage)
		sys := &scheduledSystem{
			name:    entry.name,
			system:  entry.system,
			access:  access,
			queries: queries,
			stats:   systemStatsInternal{minDuration: time.Duration(1<<63 - 1)},
		}

		stage := 0
		for _, dep := range entry.deps {
			stage = max(stage, placed[index[dep]].stage+1)
		}
		// conflicting systems keep their topological order
		for later := len(s.stages) - 1; later >= stage; later-- {
			if conflictsWithStage(s.stages[later], access) {
				stage = later + 1
				break
			}
		}
		if stage == len(s.stages) {
			s.stages = append(s.stages, nil)
		}
		sys.stage = stage
		s.stages[stage] = append(s.stages[stage], sys)

		placed[i] = sys
		s.systems = append(s.systems, sys)
	}

	return s, nil
}

func conflictsWithStage(stage []*scheduledSystem, access Access) bool {
	for _, member := range stage {
		if member.access.Conflicts(access) {
			return true
		}
	}
	return false
}

// SystemName returns the type name of a system, useful as a default registration name.
func SystemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
