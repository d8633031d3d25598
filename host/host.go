package host

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DoumanAsh/vn/config"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/ecs/debugui"
	debugui_ebiten "github.com/DoumanAsh/vn/ecs/debugui/ebiten"
	"github.com/DoumanAsh/vn/game"
	"github.com/DoumanAsh/vn/logging"
	"github.com/DoumanAsh/vn/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/willow"
)

// defaultDelta is the frame time assumed for the first frame.
const defaultDelta = 1.0 / 60

// Options configures Run.
type Options struct {
	Display config.Display
	// Game configures the application. Its Loader is replaced by the host loader.
	Game game.Options
	// DebugUI adds the ImGui entity browser and performance windows.
	DebugUI bool
}

// Game is the ebiten.Game driving an application. Every frame it publishes the window
// size, routes window close and key presses, lets willow turn pointer input into UI
// events, updates the application and then dispatches the game.Render track.
type Game struct {
	app    *game.Application
	scene  *willow.Scene
	logger *slog.Logger

	width, height int
	screen        ui.ScreenDimensions
	keys          []ebiten.Key
	last          time.Time

	imgui   *debugui_ebiten.ImguiBackend
	windows *debugui.Windows
}

// NewGame wires a started or fresh application to a scene built by InstallScene.
func NewGame(app *game.Application, scene *willow.Scene, logger *slog.Logger) *Game {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Game{app: app, scene: scene, logger: logger}
}

// WithDebugUI draws the debug windows spawned by debugui.SpawnDebugUI through backend.
func (g *Game) WithDebugUI(backend debugui_ebiten.ImguiBackend, windows *debugui.Windows) *Game {
	g.imgui = &backend
	g.windows = windows
	return g
}

func (g *Game) Update() error {
	g.publishScreen()

	if ebiten.IsWindowBeingClosed() {
		g.logger.Info("window close requested")
		g.app.HandleEvent(game.CloseRequested())
	}

	g.scene.Update()
	if !g.keyboardCaptured() {
		g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
		for _, key := range g.keys {
			if !g.app.HandleEvent(game.KeyDown(key.String())) {
				break
			}
		}
	}

	dt := g.delta()
	if g.imgui != nil {
		g.windows.Performance.Record(float32(dt))
		g.imgui.Frame(func() { g.app.Update(dt) })
	} else {
		g.app.Update(dt)
	}

	if !g.app.Running() {
		return ebiten.Termination
	}
	g.app.Dispatcher().Dispatch(game.Render, dt)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.imgui != nil {
		g.imgui.Overlay(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	if g.imgui != nil {
		g.imgui.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// publishScreen updates the ScreenDimensions singleton after the window size changed.
func (g *Game) publishScreen() {
	size := ui.ScreenDimensions{Width: float32(g.width), Height: float32(g.height)}
	if size == g.screen || g.width <= 0 || g.height <= 0 {
		return
	}
	g.screen = size
	ui.InstallScreen(g.app.Storage(), size.Width, size.Height)
	g.logger.Debug("screen resized", slog.Int("width", g.width), slog.Int("height", g.height))
}

func (g *Game) keyboardCaptured() bool {
	var state *debugui.ImguiInputState
	if g.imgui == nil || !g.app.Storage().ReadSingleton(&state) {
		return false
	}
	return state.WantCaptureKeyboard
}

func (g *Game) delta() float64 {
	now := time.Now()
	defer func() { g.last = now }()
	if g.last.IsZero() {
		return defaultDelta
	}
	return now.Sub(g.last).Seconds()
}

func configureWindow(d config.Display) {
	ebiten.SetWindowTitle(d.Title)
	ebiten.SetWindowSize(d.Width, d.Height)
	ebiten.SetVsyncEnabled(d.VSync)
	ebiten.SetFullscreen(d.Fullscreen)
	if d.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if d.TPS > 0 {
		ebiten.SetTPS(d.TPS)
	}
	ebiten.SetWindowClosingHandled(true)
}

// Run opens the window and drives a new application until a state quits or the window
// closes. It returns the error that stopped the application, if any.
func Run(opts Options) error {
	logger := opts.Game.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	loader := NewLoader()
	gameOpts := opts.Game
	gameOpts.Loader = loader
	gameOpts.Screen = ui.ScreenDimensions{Width: float32(opts.Display.Width), Height: float32(opts.Display.Height)}
	gameOpts.RenderBundles = append(gameOpts.RenderBundles, RenderBundle{})
	if opts.DebugUI {
		gameOpts.Components = append(gameOpts.Components, debugui.RegisterComponents)
		gameOpts.Bundles = append(gameOpts.Bundles, debugui.Bundle{})
	}

	app, err := game.New(gameOpts)
	if err != nil {
		return err
	}

	scene := willow.NewScene()
	graph := InstallScene(app.Storage(), scene, loader)
	scene.SetEntityStore(NewBridge(graph, app.Bus()))

	g := NewGame(app, scene, logging.Component(logger, "host"))
	if opts.DebugUI {
		backend := debugui_ebiten.NewImguiBackend(opts.Display.Title, opts.Display.Width, opts.Display.Height)
		_, windows := debugui.SpawnDebugUI(app.Storage(), app.Dispatcher())
		g.WithDebugUI(backend, windows)
	}
	configureWindow(opts.Display)

	if err := app.Start(); err != nil {
		return err
	}
	defer app.Stop()

	logger.Info("window opened",
		slog.String("title", opts.Display.Title),
		slog.Int("width", opts.Display.Width),
		slog.Int("height", opts.Display.Height),
		slog.Bool("debug_ui", opts.DebugUI))

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	return app.Err()
}

var _ ecs.Bundle = RenderBundle{}
