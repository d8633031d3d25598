package game

import (
	"log/slog"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/resources"
	"github.com/DoumanAsh/vn/ui"
)

const (
	menuButtonLayer    float32 = 5
	menuButtonFontSize float32 = 20
	menuButtonHeight   float32 = 100
)

// MenuButtonSize returns the size of a menu button on a screen.
func MenuButtonSize(screen ui.ScreenDimensions) (width, height float32) {
	return screen.Width * 0.2, menuButtonHeight
}

func resizeMenuButton(d ui.Dimensions, screen ui.ScreenDimensions) ui.Dimensions {
	d.Width, d.Height = MenuButtonSize(screen)
	return d
}

// MenuUi is the entities of the main menu.
type MenuUi struct {
	Background ecs.EntityId
	NewGame    ecs.EntityId
	ExitGame   ecs.EntityId
}

func menuButton(name, label string, res UiResources, screen ui.ScreenDimensions) *ui.ButtonBuilder {
	w, h := MenuButtonSize(screen)
	return ui.NewButton(name, label).
		Font(res.Font, menuButtonFontSize).
		Image(res.Background.MenuButton).
		HoverImage(res.Background.MenuButtonHover).
		PressImage(res.Background.MenuButtonClicked).
		Anchor(ui.Middle).
		Size(w, h).
		Layer(menuButtonLayer)
}

// NewMenuUi spawns the menu background and its Start and Exit buttons.
func NewMenuUi(storage *ecs.Storage, res UiResources, screen ui.ScreenDimensions) *MenuUi {
	m := &MenuUi{}
	m.Background = storage.Spawn(
		ui.Transform{
			Id:      "Background",
			Anchor:  ui.Middle,
			LocalZ:  1.5,
			Width:   1,
			Height:  1,
			Stretch: ui.Stretch{Mode: ui.StretchXY},
		},
		ui.Image{Texture: res.Background.Menu, Tint: assets.White},
	)

	m.NewGame = menuButton("btn_new_game", "Start", res, screen).Position(0, -100).Build(storage)
	m.ExitGame = menuButton("btn_exit_game", "Exit", res, screen).Position(0, -225).Build(storage)
	for _, id := range []ecs.EntityId{m.NewGame, m.ExitGame} {
		storage.AddComponent(id, ui.Resize{Fn: resizeMenuButton})
	}
	return m
}

// Entities returns the background and button entities.
func (m *MenuUi) Entities() []ecs.EntityId {
	return []ecs.EntityId{m.Background, m.NewGame, m.ExitGame}
}

// Destroy deletes every menu entity.
func (m *MenuUi) Destroy(storage *ecs.Storage) {
	for _, id := range m.Entities() {
		storage.Delete(id)
	}
}

// Menu is the title screen. Start switches to Game, Exit quits.
type Menu struct {
	ui       *MenuUi
	debounce *Debouncer
}

// NewMenu returns the main menu state. Its UI is built in OnStart.
func NewMenu() *Menu {
	return &Menu{}
}

func (m *Menu) String() string { return "Menu" }

// Ui returns the menu entities, or nil outside the state lifetime.
func (m *Menu) Ui() *MenuUi {
	return m.ui
}

func (m *Menu) OnStart(data StateData) error {
	res, err := resources.Fetch[UiResources](data.Resources)
	if err != nil {
		return err
	}
	m.ui = NewMenuUi(data.Storage, res, screenOf(data.Storage))
	m.debounce = NewDebouncer(data.Clock)
	return nil
}

func (m *Menu) OnStop(data StateData) {
	if m.ui == nil {
		unreachable("menu stopped without ui")
	}
	m.ui.Destroy(data.Storage)
	m.ui = nil
}

func (m *Menu) HandleEvent(data StateData, event Event) Trans {
	switch event.Kind {
	case EventCloseRequested:
		return Quit()
	case EventUi:
		if event.Ui.Kind != ui.ClickStop {
			return None()
		}
		if m.ui == nil {
			unreachable("menu event without ui")
		}

		target := event.Ui.Target
		if target != m.ui.NewGame && target != m.ui.ExitGame {
			return None()
		}
		if !m.debounce.Accept() {
			data.Logger.Debug("click bounced", slog.Uint64("target", uint64(target)))
			return None()
		}
		data.Logger.Debug("click", slog.Uint64("target", uint64(target)))

		if target == m.ui.ExitGame {
			return Quit()
		}
		return Switch(NewGame())
	}
	return None()
}

func (m *Menu) Update(data StateData) Trans {
	data.Dispatcher.Dispatch(Base, data.DeltaTime)
	return None()
}

func screenOf(storage *ecs.Storage) ui.ScreenDimensions {
	var s *ui.ScreenDimensions
	if !storage.ReadSingleton(&s) {
		return ui.ScreenDimensions{}
	}
	return *s
}
