package ui_test

import (
	"sync"
	"testing"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/ui"
	"github.com/stretchr/testify/assert"
)

func TestEventBusBatches(t *testing.T) {
	bus := ui.NewEventBus()
	start := ui.Event{Kind: ui.ClickStart, Target: ecs.NewEntityId(1, 1)}
	stop := ui.Event{Kind: ui.ClickStop, Target: ecs.NewEntityId(1, 1)}

	bus.Publish(start)
	assert.Empty(t, bus.Frame(), "events wait for Process")
	assert.Empty(t, bus.Drain())

	bus.Process()
	bus.Publish(stop)
	assert.Equal(t, []ui.Event{start}, bus.Frame())

	bus.Process()
	assert.Equal(t, []ui.Event{stop}, bus.Frame())
	assert.Equal(t, []ui.Event{start, stop}, bus.Drain())
	assert.Empty(t, bus.Drain())

	bus.Process()
	assert.Empty(t, bus.Frame())
}

func TestEventBusConcurrentPublish(t *testing.T) {
	bus := ui.NewEventBus()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				bus.Publish(ui.Event{Kind: ui.Click, Target: ecs.NewEntityId(1, uint32(i+1))})
			}
		}()
	}
	wg.Wait()
	bus.Process()

	assert.Len(t, bus.Frame(), 800)
	assert.Len(t, bus.Drain(), 800)
}

func TestInstallEventBusKeepsExisting(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	first := ui.InstallEventBus(storage)
	assert.Same(t, first, ui.InstallEventBus(storage))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "ClickStop", ui.ClickStop.String())
	assert.Equal(t, "HoverStart", ui.HoverStart.String())
	assert.Equal(t, "EventKind(0)", ui.EventKind(0).String())
}
