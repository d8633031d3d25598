package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/resources"
	"github.com/DoumanAsh/vn/ui"
)

// Application drives the active state. It is not safe for concurrent use; the host calls
// it from its update loop.
type Application struct {
	data    StateData
	current State
	running bool
	started bool
	err     error
	bus     *ui.EventBus
}

// NewApplication creates an application that enters initial on Start.
func NewApplication(initial State, data StateData) *Application {
	return &Application{
		data:    data,
		current: initial,
		bus:     ui.InstallEventBus(data.Storage),
	}
}

// Start enters the initial state.
func (a *Application) Start() error {
	if a.started {
		return fmt.Errorf("application already started")
	}
	a.started = true

	if err := a.current.OnStart(a.data); err != nil {
		a.err = fmt.Errorf("start %s: %w", stateName(a.current), err)
		return a.err
	}
	a.running = true
	a.data.Logger.Info("state started", slog.String("state", stateName(a.current)))
	return nil
}

// HandleEvent routes one host event to the active state and applies the resulting
// transition. Returns whether the application is still running.
func (a *Application) HandleEvent(event Event) bool {
	if !a.running {
		return false
	}
	return a.apply(a.current.HandleEvent(a.data, event))
}

// Update runs one frame of the active state, then routes the UI events the frame
// produced. Returns whether the application is still running.
func (a *Application) Update(dt float64) bool {
	if !a.running {
		return false
	}

	a.data.DeltaTime = dt
	if !a.apply(a.current.Update(a.data)) {
		return false
	}

	for _, e := range a.bus.Drain() {
		if !a.HandleEvent(UiEvent(e)) {
			return false
		}
	}
	return true
}

// Stop leaves the active state. The application cannot be restarted.
func (a *Application) Stop() {
	if !a.running {
		return
	}
	a.current.OnStop(a.data)
	a.running = false
	a.data.Logger.Info("state stopped", slog.String("state", stateName(a.current)))
}

func (a *Application) apply(t Trans) bool {
	switch t.Kind {
	case TransNone:
	case TransSwitch:
		if t.Next == nil {
			unreachable("switch without a next state")
		}
		from := stateName(a.current)
		a.current.OnStop(a.data)
		a.current = t.Next
		if err := a.current.OnStart(a.data); err != nil {
			a.err = fmt.Errorf("start %s: %w", stateName(a.current), err)
			a.running = false
			a.data.Logger.Error("state failed to start", slog.String("state", stateName(a.current)), slog.Any("error", err))
			return false
		}
		a.data.Logger.Info("state switched", slog.String("from", from), slog.String("to", stateName(a.current)))
	case TransQuit:
		a.Stop()
	}
	return a.running
}

// Running reports whether a state is active.
func (a *Application) Running() bool {
	return a.running
}

// Err returns the error that stopped the application, if any.
func (a *Application) Err() error {
	return a.err
}

// State returns the active state.
func (a *Application) State() State {
	return a.current
}

// Storage returns the entity store shared by every state.
func (a *Application) Storage() *ecs.Storage {
	return a.data.Storage
}

// Dispatcher returns the compiled tracks.
func (a *Application) Dispatcher() *ecs.Dispatcher {
	return a.data.Dispatcher
}

// Resources returns the cache the states fetch their resources from.
func (a *Application) Resources() *resources.Cache {
	return a.data.Resources
}

// Bus returns the UI event bus hosts publish pointer interactions to.
func (a *Application) Bus() *ui.EventBus {
	return a.bus
}

// EventSource feeds a headless run. Next blocks until the next frame is due and returns
// its events and delta time; ok is false once the source is exhausted.
type EventSource interface {
	Next(ctx context.Context) (events []Event, dt float64, ok bool)
}

// Run starts the application if needed and drives it from source until a state quits,
// the source is exhausted or ctx is done. The active state is stopped before returning.
func (a *Application) Run(ctx context.Context, source EventSource) error {
	if !a.started {
		if err := a.Start(); err != nil {
			return err
		}
	}
	defer a.Stop()

	for a.running {
		if err := ctx.Err(); err != nil {
			return err
		}

		events, dt, ok := source.Next(ctx)
		if !ok {
			return ctx.Err()
		}
		for _, e := range events {
			if !a.HandleEvent(e) {
				break
			}
		}
		if a.running {
			a.Update(dt)
		}
	}
	return a.err
}

func stateName(s State) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
