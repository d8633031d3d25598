package game

import (
	"fmt"
	"log/slog"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/resources"
	"github.com/DoumanAsh/vn/ui"
)

const (
	advTextFontSize float32 = 40
	advTextHeight   float32 = 200
	advTextY        float32 = 110
	advTextMargin   float32 = 10
)

// AdvTextSize returns the dialogue window size on a screen. Width follows the stretch.
func AdvTextSize(screen ui.ScreenDimensions) (width, height float32) {
	return 0, screen.Height / 3.84
}

func resizeAdvText(d ui.Dimensions, screen ui.ScreenDimensions) ui.Dimensions {
	_, d.Height = AdvTextSize(screen)
	// keeps the window bottom just above the screen edge
	d.LocalY = screen.Height / 6.981
	return d
}

// AdvUi is the dialogue window of the Game screen.
type AdvUi struct {
	Text ui.TextWindow
}

// NewAdvUi builds the dialogue window with its text and close button.
func NewAdvUi(storage *ecs.Storage, res UiResources) *AdvUi {
	return &AdvUi{
		Text: ui.NewTextWindow().
			Name("adv_text").
			Text("Text example").
			Font(res.Font, advTextFontSize).
			Position(0, advTextY).
			Width(0).
			Height(advTextHeight).
			Anchor(ui.BottomMiddle).
			Background(res.Adv.TextBackground).
			Stretch(ui.Stretch{Mode: ui.StretchX, XMargin: advTextMargin}).
			Resize(resizeAdvText).
			CloseBackground(res.Adv.CloseBackground).
			Build(storage),
	}
}

// Entities returns the dialogue window entities.
func (a *AdvUi) Entities() []ecs.EntityId {
	return a.Text.Entities()
}

// Destroy deletes the dialogue window.
func (a *AdvUi) Destroy(storage *ecs.Storage) {
	a.Text.Destroy(storage)
}

// Game is the play screen: a dialogue window over a demo scene.
type Game struct {
	ui       *AdvUi
	sprite   ecs.EntityId
	camera   ecs.EntityId
	debounce *Debouncer
}

// NewGame returns the in-game state. Its UI, sprite and camera are created in OnStart.
func NewGame() *Game {
	return &Game{}
}

func (g *Game) String() string { return "Game" }

// Ui returns the dialogue window, or nil outside the state lifetime.
func (g *Game) Ui() *AdvUi {
	return g.ui
}

// Entities lists every entity the state owns.
func (g *Game) Entities() []ecs.EntityId {
	if g.ui == nil {
		return nil
	}
	return append(g.ui.Entities(), g.sprite, g.camera)
}

func (g *Game) OnStart(data StateData) error {
	res, err := resources.Fetch[UiResources](data.Resources)
	if err != nil {
		return err
	}
	sprites, err := resources.Fetch[Sprites](data.Resources)
	if err != nil {
		return fmt.Errorf("sprites: %w", err)
	}

	g.ui = NewAdvUi(data.Storage, res)
	g.sprite = spawnDemoSprite(data.Storage, sprites, screenOf(data.Storage))
	g.camera = spawnCamera(data.Storage)
	g.debounce = NewDebouncer(data.Clock)
	return nil
}

func (g *Game) OnStop(data StateData) {
	if g.ui == nil {
		unreachable("game stopped without ui")
	}
	g.ui.Destroy(data.Storage)
	data.Storage.Delete(g.sprite)
	data.Storage.Delete(g.camera)
	g.ui = nil
	g.sprite, g.camera = 0, 0
}

func (g *Game) window() *ui.TextWindow {
	if g.ui == nil {
		unreachable("game event without ui")
	}
	return &g.ui.Text
}

func (g *Game) HandleEvent(data StateData, event Event) Trans {
	switch event.Kind {
	case EventCloseRequested:
		return Quit()
	case EventKeyDown:
		if event.Key == data.ToggleKey {
			g.window().ToggleHidden(data.Storage)
		}
	case EventUi:
		if event.Ui.Kind != ui.Click {
			return None()
		}
		w := g.window()
		if event.Ui.Target != w.Close {
			return None()
		}
		if !g.debounce.Accept() {
			data.Logger.Debug("click bounced", slog.Uint64("target", uint64(event.Ui.Target)))
			return None()
		}
		data.Logger.Info("close text window")
		w.ToggleHidden(data.Storage)
	}
	return None()
}

func (g *Game) Update(data StateData) Trans {
	data.Dispatcher.Dispatch(Base, data.DeltaTime)
	data.Dispatcher.Dispatch(Adv, data.DeltaTime)
	return None()
}

func spawnDemoSprite(storage *ecs.Storage, sprites Sprites, screen ui.ScreenDimensions) ecs.EntityId {
	return storage.Spawn(
		Transform2D{X: screen.Width * 0.5, Y: screen.Height / 2},
		SpriteRender{Sheet: sprites.Kaoru},
	)
}

func spawnCamera(storage *ecs.Storage) ecs.EntityId {
	return storage.Spawn(
		Camera{Width: CameraWidth, Height: CameraHeight},
		Transform2D{Z: cameraZ},
	)
}
