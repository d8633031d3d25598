package ecs_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsFlush(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	doomed := storage.Spawn(Position{})
	kept := storage.Spawn(Position{}, Velocity{})

	cmds := ecs.NewCommands()
	cmds.Delete(doomed)
	cmds.AddComponent(doomed, Health{})
	cmds.RemoveComponent(kept, reflect.TypeOf(Velocity{}))
	cmds.AddComponent(kept, Tag("kept"))

	var spawned ecs.EntityId
	cmds.SpawnThen(func(id ecs.EntityId) { spawned = id }, Name{Value: "new"})

	ran := false
	cmds.Defer(func() { ran = true })

	assert.Equal(t, 6, cmds.Pending())
	// nothing happens before the flush
	assert.True(t, storage.Alive(doomed))

	cmds.Flush(storage)

	assert.False(t, storage.Alive(doomed))
	assert.False(t, ecs.HasComponentOf[Velocity](storage, kept))
	assert.Equal(t, Tag("kept"), *ecs.ReadComponent[Tag](storage, kept))
	require.True(t, storage.Alive(spawned))
	assert.Equal(t, "new", ecs.ReadComponent[Name](storage, spawned).Value)
	assert.True(t, ran)
	assert.Equal(t, 0, cmds.Pending())
}

func TestCommandsConcurrentQueue(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	cmds := ecs.NewCommands()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cmds.Spawn(Score(j))
			}
		}()
	}
	wg.Wait()

	cmds.Flush(storage)
	assert.Equal(t, 400, storage.EntityCount())
}

func TestDeferQueuesForNextFlush(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	cmds := ecs.NewCommands()

	cmds.Defer(func() { cmds.Spawn(Position{}) })
	cmds.Flush(storage)
	assert.Equal(t, 0, storage.EntityCount())
	assert.Equal(t, 1, cmds.Pending())

	cmds.Flush(storage)
	assert.Equal(t, 1, storage.EntityCount())
}
