package main

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStressWorld(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry)
	storage.AddSingleton(Census{})

	dispatcher, err := ecs.NewBuilder().
		WithBundle(track, stressBundle{rng: rng}).
		Build(storage, ecs.NewWorkerPool(4))
	require.NoError(t, err)
	assert.Len(t, dispatcher.Scheduler(track).Order(), systemCount)

	moving := storage.Spawn(Position{}, Velocity{X: 10})
	expiring := storage.Spawn(Lifetime{Remaining: 0.5})
	for range 100 {
		storage.Spawn(randomComponents(rng, rng.Intn(componentCount)+1)...)
	}

	dispatcher.Dispatch(track, 1)
	assert.InDelta(t, 9.0, ecs.ReadComponent[Position](storage, moving).X, 1e-9, "drag runs before movement")
	assert.False(t, storage.Alive(expiring))
	assert.Equal(t, 102, storage.EntityCount(), "expired entities are replaced")

	var census *Census
	require.True(t, storage.ReadSingleton(&census))
	assert.Positive(t, census.Moving)

	report := &Report{
		Stages:    dispatcher.Scheduler(track).Stages(),
		Scheduler: dispatcher.Scheduler(track).GetStats(),
		Census:    *census,
	}
	var out bytes.Buffer
	require.NoError(t, report.Generate(&out))
	assert.Contains(t, out.String(), "| movement |")
}
