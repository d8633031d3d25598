package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/game"
	"github.com/DoumanAsh/vn/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newApp(t *testing.T, loader *assets.MemoryLoader, clock *fakeClock) *game.Application {
	t.Helper()
	if loader == nil {
		loader = assets.NewMemoryLoader()
	}
	if clock == nil {
		clock = &fakeClock{now: time.Unix(1000, 0)}
	}

	app, err := game.New(game.Options{
		Loader:  loader,
		Workers: 2,
		Screen:  ui.ScreenDimensions{Width: 1024, Height: 768},
		Clock:   clock.Now,
	})
	require.NoError(t, err)
	return app
}

func startedApp(t *testing.T, clock *fakeClock) *game.Application {
	t.Helper()
	app := newApp(t, nil, clock)
	require.NoError(t, app.Start())
	return app
}

func menuOf(t *testing.T, app *game.Application) *game.Menu {
	t.Helper()
	menu, ok := app.State().(*game.Menu)
	require.True(t, ok, "active state is %T", app.State())
	return menu
}

// enterGame clicks Start on the menu and returns the Game state.
func enterGame(t *testing.T, app *game.Application) *game.Game {
	t.Helper()
	menu := menuOf(t, app)
	app.Bus().Publish(ui.Event{Kind: ui.ClickStop, Target: menu.Ui().NewGame})
	require.True(t, app.Update(frame))

	g, ok := app.State().(*game.Game)
	require.True(t, ok, "active state is %T", app.State())
	return g
}

func TestNewRequiresLoader(t *testing.T) {
	_, err := game.New(game.Options{})
	assert.Error(t, err)
}

func TestTracks(t *testing.T) {
	app := newApp(t, nil, nil)

	assert.Equal(t, []ecs.Track{game.Base, game.Adv}, app.Dispatcher().Tracks())
	assert.Equal(t,
		[]string{ui.EventSystemName, ui.ButtonSystemName, ui.ResizeSystemName, ui.LayoutSystemName},
		app.Dispatcher().Scheduler(game.Base).Order())
	assert.Equal(t, []string{game.DemoSystemName}, app.Dispatcher().Scheduler(game.Adv).Order())
}

func TestRenderTrackIsOptional(t *testing.T) {
	var rendered []ecs.Track
	render := ecs.BundleFunc(func(tb *ecs.TrackBuilder) error {
		rendered = append(rendered, tb.Track())
		return nil
	})

	app, err := game.New(game.Options{
		Loader:        assets.NewMemoryLoader(),
		RenderBundles: []ecs.Bundle{render},
	})
	require.NoError(t, err)
	assert.Equal(t, []ecs.Track{game.Render}, rendered)
	assert.Equal(t, []ecs.Track{game.Base, game.Adv, game.Render}, app.Dispatcher().Tracks())

	assert.Nil(t, newApp(t, nil, nil).Dispatcher().Scheduler(game.Render))
}

func TestMenuLifecycle(t *testing.T) {
	app := startedApp(t, nil)
	menu := menuOf(t, app)

	require.NotNil(t, menu.Ui())
	ids := menu.Ui().Entities()
	for _, id := range ids {
		assert.True(t, app.Storage().Alive(id))
	}
	assert.Equal(t, 3, app.Storage().EntityCount())

	app.Stop()
	assert.False(t, app.Running())
	assert.Nil(t, menu.Ui())
	assert.Equal(t, 0, app.Storage().EntityCount())
}

func TestMenuButtonsFollowScreen(t *testing.T) {
	app := startedApp(t, nil)
	start := menuOf(t, app).Ui().NewGame

	require.True(t, app.Update(frame))
	tr := ecs.ReadComponent[ui.Transform](app.Storage(), start)
	assert.InDelta(t, 204.8, tr.Width, 1e-3)
	assert.Equal(t, float32(100), tr.Height)
	assert.Equal(t, float32(5), tr.GlobalZ)

	ui.InstallScreen(app.Storage(), 2000, 1000)
	require.True(t, app.Update(frame))
	assert.InDelta(t, 400, tr.Width, 1e-3)
}

func TestMenuStartSwitchesToGame(t *testing.T) {
	app := startedApp(t, nil)
	menuIds := menuOf(t, app).Ui().Entities()

	g := enterGame(t, app)

	for _, id := range menuIds {
		assert.False(t, app.Storage().Alive(id))
	}
	require.NotNil(t, g.Ui())
	assert.Len(t, g.Entities(), 5)
	assert.Equal(t, 5, app.Storage().EntityCount())

	assert.False(t, app.HandleEvent(game.CloseRequested()))
	assert.False(t, app.Running())
	assert.Equal(t, 0, app.Storage().EntityCount())
	assert.NoError(t, app.Err())
}

func TestMenuExitQuits(t *testing.T) {
	app := startedApp(t, nil)
	app.Bus().Publish(ui.Event{Kind: ui.ClickStop, Target: menuOf(t, app).Ui().ExitGame})

	assert.False(t, app.Update(frame))
	assert.False(t, app.Running())
	assert.Equal(t, 0, app.Storage().EntityCount())
}

func TestMenuCloseQuits(t *testing.T) {
	app := startedApp(t, nil)

	assert.False(t, app.HandleEvent(game.CloseRequested()))
	assert.Equal(t, 0, app.Storage().EntityCount())
	assert.False(t, app.Update(frame))
}

func TestMenuIgnoresOtherEvents(t *testing.T) {
	app := startedApp(t, nil)
	m := menuOf(t, app).Ui()

	events := []game.Event{
		game.UiEvent(ui.Event{Kind: ui.ClickStart, Target: m.NewGame}),
		game.UiEvent(ui.Event{Kind: ui.Click, Target: m.ExitGame}),
		game.UiEvent(ui.Event{Kind: ui.ClickStop, Target: m.Background}),
		game.KeyDown("Space"),
	}
	for _, e := range events {
		assert.True(t, app.HandleEvent(e), e.String())
	}
	menuOf(t, app)
}

func TestGameToggleKey(t *testing.T) {
	app := startedApp(t, nil)
	g := enterGame(t, app)
	w := &g.Ui().Text

	require.False(t, w.IsHidden(app.Storage()))
	assert.True(t, app.HandleEvent(game.KeyDown("Space")))
	assert.True(t, w.IsHidden(app.Storage()))
	assert.False(t, ecs.HasComponentOf[ui.Interactive](app.Storage(), w.Close))

	assert.True(t, app.HandleEvent(game.KeyDown("Enter")))
	assert.True(t, w.IsHidden(app.Storage()))

	assert.True(t, app.HandleEvent(game.KeyDown("Space")))
	assert.False(t, w.IsHidden(app.Storage()))
	assert.True(t, ecs.HasComponentOf[ui.Interactive](app.Storage(), w.Close))
}

func TestGameCloseClickDebounce(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	app := startedApp(t, clock)
	g := enterGame(t, app)
	w := &g.Ui().Text
	click := game.UiEvent(ui.Event{Kind: ui.Click, Target: w.Close})

	app.HandleEvent(click)
	assert.True(t, w.IsHidden(app.Storage()), "first click is accepted")

	clock.Advance(500 * time.Millisecond)
	app.HandleEvent(click)
	assert.True(t, w.IsHidden(app.Storage()), "click after 0.5s bounces")

	clock.Advance(time.Second)
	app.HandleEvent(click)
	assert.False(t, w.IsHidden(app.Storage()), "click after 1.5s is accepted")

	app.HandleEvent(game.UiEvent(ui.Event{Kind: ui.ClickStop, Target: w.Close}))
	assert.False(t, w.IsHidden(app.Storage()), "only Click toggles")
}

func TestGameLayout(t *testing.T) {
	app := startedApp(t, nil)
	g := enterGame(t, app)
	require.True(t, app.Update(frame))

	tr := ecs.ReadComponent[ui.Transform](app.Storage(), g.Ui().Text.Window)
	assert.InDelta(t, 200, tr.Height, 1e-3)
	assert.InDelta(t, 768/6.981, tr.LocalY, 1e-3)
	assert.Equal(t, float32(1004), tr.Rect.Width)
	assert.True(t, tr.Visible)
}

func TestGameRunsDemo(t *testing.T) {
	app := startedApp(t, nil)
	g := enterGame(t, app)

	sprite := g.Entities()[3]
	pos := ecs.ReadComponent[game.Transform2D](app.Storage(), sprite)
	require.NotNil(t, pos)
	assert.Equal(t, float32(512), pos.X)

	for range 3 {
		require.True(t, app.Update(1))
	}
	assert.True(t, ecs.HasComponentOf[game.Mirrored](app.Storage(), sprite))
	assert.Equal(t, float32(512-2500), pos.X)
}

func TestResourcesAreShared(t *testing.T) {
	loader := assets.NewMemoryLoader()
	app := newApp(t, loader, nil)
	require.NoError(t, app.Start())
	enterGame(t, app)

	assert.Equal(t, map[string]int{"game.UiResources": 1, "game.Sprites": 1}, app.Resources().Constructions())
	assert.Equal(t, 1, loader.Count(assets.KindFont))
	assert.Equal(t, 1, loader.Count(assets.KindSpriteSheet))
}

func TestStartFailure(t *testing.T) {
	loader := assets.NewMemoryLoader()
	loader.FailOn(assets.KindFont, errors.New("corrupt font"))
	app := newApp(t, loader, nil)

	err := app.Start()
	assert.ErrorContains(t, err, "corrupt font")
	assert.False(t, app.Running())
	assert.False(t, app.Update(frame))
}

func TestSwitchFailureStops(t *testing.T) {
	loader := assets.NewMemoryLoader()
	app := newApp(t, loader, nil)
	require.NoError(t, app.Start())
	loader.FailOn(assets.KindSpriteSheet, errors.New("missing sheet"))

	app.Bus().Publish(ui.Event{Kind: ui.ClickStop, Target: menuOf(t, app).Ui().NewGame})
	assert.False(t, app.Update(frame))
	assert.ErrorContains(t, app.Err(), "missing sheet")
}

func TestRunHeadless(t *testing.T) {
	app := startedApp(t, nil)
	start := menuOf(t, app).Ui().NewGame

	source := &game.FixedSource{
		Frames:    10,
		DeltaTime: frame,
		Script: map[int][]game.Event{
			1: {game.UiEvent(ui.Event{Kind: ui.ClickStop, Target: start})},
			3: {game.CloseRequested()},
		},
	}
	require.NoError(t, app.Run(context.Background(), source))

	assert.Equal(t, 4, source.Frame())
	assert.False(t, app.Running())
	assert.Equal(t, 0, app.Storage().EntityCount())
}

func TestRunStopsWhenSourceEnds(t *testing.T) {
	app := newApp(t, nil, nil)
	source := &game.FixedSource{Frames: 2, DeltaTime: frame}

	require.NoError(t, app.Run(context.Background(), source))
	assert.Equal(t, 2, source.Frame())
	assert.Equal(t, 0, app.Storage().EntityCount())
}

func TestRunCancelled(t *testing.T) {
	app := newApp(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.Run(ctx, &game.FixedSource{DeltaTime: frame, Interval: time.Millisecond})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, app.Storage().EntityCount())
}

func TestMissingUiIsUnreachable(t *testing.T) {
	menu := game.NewMenu()
	assert.PanicsWithValue(t, "unreachable: menu event without ui", func() {
		menu.HandleEvent(game.StateData{}, game.UiEvent(ui.Event{Kind: ui.ClickStop}))
	})
	assert.PanicsWithValue(t, "unreachable: menu stopped without ui", func() {
		menu.OnStop(game.StateData{})
	})
	assert.PanicsWithValue(t, "unreachable: game event without ui", func() {
		game.NewGame().HandleEvent(game.StateData{ToggleKey: "Space"}, game.KeyDown("Space"))
	})
}
