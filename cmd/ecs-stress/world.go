package main

import (
	"math/rand"

	"github.com/DoumanAsh/vn/ecs"
)

const track ecs.Track = "stress"

type Position struct{ X, Y float64 }

type Velocity struct{ X, Y float64 }

type Health struct{ Current, Max float64 }

type Heat struct{ Value float64 }

// Lifetime counts down to the frame the entity is replaced by a fresh one.
type Lifetime struct{ Remaining float64 }

// Census is rebuilt every frame by CensusSystem.
type Census struct {
	Moving   int
	Hurt     int
	Expiring int
}

// componentCount is the number of synthetic component types spawned by the tool.
const componentCount = 5

func registerComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](r)
	ecs.RegisterComponent[Velocity](r)
	ecs.RegisterComponent[Health](r)
	ecs.RegisterComponent[Heat](r)
	ecs.RegisterComponent[Lifetime](r)
}

// randomComponents picks n distinct synthetic components with random values.
func randomComponents(rng *rand.Rand, n int) []any {
	all := []func() any{
		func() any { return Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000} },
		func() any { return Velocity{X: rng.NormFloat64(), Y: rng.NormFloat64()} },
		func() any { return Health{Current: rng.Float64() * 100, Max: 100} },
		func() any { return Heat{Value: rng.Float64() * 50} },
		func() any { return Lifetime{Remaining: 1 + rng.Float64()*4} },
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n > len(all) {
		n = len(all)
	}
	components := make([]any, n)
	for i := range components {
		components[i] = all[i]()
	}
	return components
}

type DragSystem struct {
	Bodies ecs.Query[struct{ *Velocity }]
}

func (s *DragSystem) Execute(frame *ecs.UpdateFrame) {
	k := 1 - 0.1*frame.DeltaTime
	for body := range s.Bodies.Values() {
		body.Velocity.X *= k
		body.Velocity.Y *= k
	}
}

type MovementSystem struct {
	Bodies ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	for body := range s.Bodies.Values() {
		body.Position.X += body.Velocity.X * frame.DeltaTime
		body.Position.Y += body.Velocity.Y * frame.DeltaTime
	}
}

type RegenSystem struct {
	Items ecs.Query[struct{ *Health }]
}

func (s *RegenSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Items.Values() {
		item.Health.Current = min(item.Health.Max, item.Health.Current+5*frame.DeltaTime)
	}
}

type CoolingSystem struct {
	Items ecs.Query[struct{ *Heat }]
}

func (s *CoolingSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Items.Values() {
		item.Heat.Value = max(0, item.Heat.Value-frame.DeltaTime)
	}
}

// DecaySystem replaces expired entities, keeping the population steady while slots churn.
type DecaySystem struct {
	Items ecs.Query[struct {
		Id ecs.EntityId
		*Lifetime
	}]

	rng *rand.Rand
}

func (s *DecaySystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Items.Values() {
		item.Lifetime.Remaining -= frame.DeltaTime
		if item.Lifetime.Remaining > 0 {
			continue
		}
		frame.Commands.Delete(item.Id)
		frame.Commands.Spawn(randomComponents(s.rng, s.rng.Intn(componentCount)+1)...)
	}
}

type CensusSystem struct {
	Moving   ecs.Query[struct{ *Velocity }] `access:"read"`
	Hurt     ecs.Query[struct{ *Health }]   `access:"read"`
	Expiring ecs.Query[struct{ *Lifetime }] `access:"read"`
	Census   ecs.Singleton[Census]
}

func (s *CensusSystem) Execute(frame *ecs.UpdateFrame) {
	c := s.Census.Get()
	c.Moving = s.Moving.Len()
	c.Hurt = 0
	for item := range s.Hurt.Values() {
		if item.Health.Current < item.Health.Max {
			c.Hurt++
		}
	}
	c.Expiring = s.Expiring.Len()
}

// stressBundle registers the synthetic systems. Drag and movement share Velocity so they
// are ordered; the rest spread across stages by their access.
type stressBundle struct {
	rng *rand.Rand
}

func (b stressBundle) Register(tb *ecs.TrackBuilder) error {
	tb.Add(&DragSystem{}, "drag").
		Add(&MovementSystem{}, "movement", "drag").
		Add(&RegenSystem{}, "regen").
		Add(&CoolingSystem{}, "cooling").
		Add(&DecaySystem{rng: b.rng}, "decay").
		Add(&CensusSystem{}, "census", "movement", "regen", "decay")
	return nil
}

// systemCount is the number of systems stressBundle registers.
const systemCount = 6

var _ ecs.Bundle = stressBundle{}
