package ecs_test

import (
	"testing"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewIter(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	moving := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	storage.Spawn(Position{X: 2})
	storage.Spawn(Velocity{DX: 3})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	count := 0
	for id, item := range view.Iter() {
		count++
		assert.Equal(t, moving, id)
		item.Position.X += item.Velocity.DX
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, moving).X)
}

func TestViewOptionalAndId(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1}, Name{Value: "a"})
	b := storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Position
		Name *Name `ecs:"optional"`
	}](storage)

	seen := map[ecs.EntityId]string{}
	for item := range view.Values() {
		if item.Name != nil {
			seen[item.EntityId] = item.Name.Value
		} else {
			seen[item.EntityId] = ""
		}
	}
	assert.Equal(t, map[ecs.EntityId]string{a: "a", b: ""}, seen)
}

func TestViewOnlyOptionalMatchesEverything(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	storage.Spawn(Position{})
	storage.Spawn(Health{})

	view := ecs.NewView[struct {
		Health *Health `ecs:"optional"`
	}](storage)

	count := 0
	for range view.Iter() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestViewMissingTable(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{})

	view := ecs.NewView[struct {
		*Position
		*AI
	}](storage)

	for range view.Iter() {
		t.Fatal("no entity carries AI")
	}
}

func TestViewGetAndFill(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 4}, Health{Current: 3})
	other := storage.Spawn(Position{})

	view := ecs.NewView[struct {
		*Position
		*Health
	}](storage)

	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, 3, item.Health.Current)
	assert.Nil(t, view.Get(other))

	storage.Delete(id)
	assert.Nil(t, view.Get(id))
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	view := ecs.NewView[struct {
		*Position
		Name *Name `ecs:"optional"`
	}](storage)

	id := view.Spawn(struct {
		*Position
		Name *Name `ecs:"optional"`
	}{Position: &Position{X: 9}})

	assert.Equal(t, float32(9), ecs.ReadComponent[Position](storage, id).X)
	assert.False(t, ecs.HasComponentOf[Name](storage, id))
}

func TestViewInvalidDefinitions(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ P Position }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"maybe"`
		}](storage)
	})
}

func TestQueryRequiresExecute(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	query := ecs.NewQuery[struct{ *Position }](storage)

	assert.Panics(t, func() { query.Iter() })
	assert.Panics(t, func() { query.Values() })

	storage.Spawn(Position{X: 1})
	query.Execute()
	assert.Equal(t, 1, query.Len())

	// the snapshot does not see entities spawned after Execute
	storage.Spawn(Position{X: 2})
	count := 0
	for range query.Values() {
		count++
	}
	assert.Equal(t, 1, count)

	query.Execute()
	assert.Equal(t, 2, query.Len())
}
