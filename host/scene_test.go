package host_test

import (
	"slices"
	"testing"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/game"
	"github.com/DoumanAsh/vn/host"
	"github.com/DoumanAsh/vn/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/willow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	font       assets.FontHandle        = 1
	background assets.TextureHandle     = 1
	sheet      assets.SpriteSheetHandle = 1
)

// fixedFont measures every rune as 10 px wide and lines as 20 px high.
type fixedFont struct{}

func (fixedFont) MeasureString(s string) (float64, float64) {
	return float64(len([]rune(s))) * 10, 20
}

func (fixedFont) LineHeight() float64 { return 20 }

type library struct {
	images map[assets.TextureHandle]*ebiten.Image
	frame  *ebiten.Image
}

func (l *library) Image(h assets.TextureHandle) *ebiten.Image { return l.images[h] }

func (l *library) Font(h assets.FontHandle, size float32) willow.Font {
	if h != font {
		return nil
	}
	return fixedFont{}
}

func (l *library) Frame(h assets.SpriteSheetHandle, frame int) *ebiten.Image {
	if h != sheet || frame != 0 {
		return nil
	}
	return l.frame
}

type world struct {
	storage    *ecs.Storage
	dispatcher *ecs.Dispatcher
	graph      *host.SceneGraph
	bus        *ui.EventBus
}

func newWorld(t *testing.T) *world {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)
	bus := ui.InstallEventBus(storage)
	ui.InstallScreen(storage, 1024, 768)

	dispatcher, err := game.NewBuilder().
		WithBundle(game.Render, host.RenderBundle{}).
		Build(storage, ecs.NewWorkerPool(2))
	require.NoError(t, err)

	lib := &library{
		images: map[assets.TextureHandle]*ebiten.Image{background: ebiten.NewImage(4, 2)},
		frame:  ebiten.NewImage(64, 32),
	}
	graph := host.InstallScene(storage, willow.NewScene(), lib)
	return &world{storage: storage, dispatcher: dispatcher, graph: graph, bus: bus}
}

// frame runs the base track then the render track, as the host does on the menu screen.
func (w *world) frame() {
	w.dispatch(1.0/60, game.Base)
}

func (w *world) dispatch(dt float64, tracks ...ecs.Track) {
	for _, track := range tracks {
		w.dispatcher.Dispatch(track, dt)
	}
	w.dispatcher.Dispatch(game.Render, dt)
}

func (w *world) nodes(t *testing.T, id ecs.EntityId) *host.EntityNodes {
	t.Helper()
	n, ok := w.graph.Elements().Lookup(id)
	require.True(t, ok, "no nodes for %v", id)
	return n
}

func TestRenderBundleOrder(t *testing.T) {
	w := newWorld(t)
	render := w.dispatcher.Scheduler(game.Render)

	assert.Equal(t, []string{host.UiSyncSystemName, host.SpriteSyncSystemName}, render.Order())
	for _, stage := range render.Stages() {
		shared := slices.Contains(stage, host.UiSyncSystemName) && slices.Contains(stage, host.SpriteSyncSystemName)
		assert.False(t, shared, "sync systems write the same scene graph")
	}
	assert.NotContains(t, w.dispatcher.Scheduler(game.Base).Order(), host.UiSyncSystemName)
}

func TestUiSyncMirrorsButton(t *testing.T) {
	w := newWorld(t)
	id := ui.NewButton("btn", "Start").
		Font(font, 20).
		Image(background).
		Size(200, 100).
		Build(w.storage)

	w.frame()
	n := w.nodes(t, id)

	assert.Equal(t, 412.0, n.Root.X)
	assert.Equal(t, 334.0, n.Root.Y)
	assert.Equal(t, 10, n.Root.ZIndex)
	assert.True(t, n.Root.Visible)
	assert.True(t, n.Root.Interactable)

	require.NotNil(t, n.Image)
	assert.Equal(t, id.Index(), n.Image.EntityID)
	assert.Equal(t, 50.0, n.Image.ScaleX)
	assert.Equal(t, 50.0, n.Image.ScaleY)
	assert.InDelta(t, 0.9, n.Image.Color.R, 1e-6)

	require.NotNil(t, n.Text)
	assert.Equal(t, "Start", n.Text.TextBlock.Content)
	assert.Equal(t, willow.TextAlignCenter, n.Text.TextBlock.Align)
	assert.Equal(t, 75.0, n.Text.X)
	assert.Equal(t, 40.0, n.Text.Y)
	assert.Equal(t, id.Index(), n.Text.EntityID)
}

func TestUiSyncWrapsWindowText(t *testing.T) {
	w := newWorld(t)
	win := ui.NewTextWindow().
		Anchor(ui.Middle).
		Width(100).
		Height(300).
		Text("Text example").
		Font(font, 40).
		Background(background).
		Build(w.storage)

	w.frame()
	root := w.nodes(t, win.Window)
	text := w.nodes(t, win.Text)

	assert.Nil(t, root.Text)
	assert.False(t, root.Root.Interactable)
	require.NotNil(t, text.Text)
	assert.Equal(t, "Text\nexample", text.Text.TextBlock.Content)
	assert.Equal(t, 0.0, text.Text.X)
	assert.Equal(t, 0.0, text.Text.Y)
	assert.Nil(t, text.Image)
}

func TestUiSyncRecreatesChangedText(t *testing.T) {
	w := newWorld(t)
	id := ui.NewButton("btn", "Start").Font(font, 20).Image(background).Build(w.storage)
	w.frame()
	first := w.nodes(t, id).Text

	w.frame()
	assert.Same(t, first, w.nodes(t, id).Text, "unchanged text keeps its node")

	ecs.ReadComponent[ui.Text](w.storage, id).Text = "Continue"
	w.frame()
	second := w.nodes(t, id).Text
	assert.NotSame(t, first, second)
	assert.True(t, first.IsDisposed())
	assert.Equal(t, "Continue", second.TextBlock.Content)
}

func TestUiSyncFollowsVisibilityAndDeletion(t *testing.T) {
	w := newWorld(t)
	win := ui.NewTextWindow().
		Width(400).
		Height(300).
		Text("hello").
		Font(font, 40).
		Background(background).
		CloseBackground(background).
		Build(w.storage)
	w.frame()
	assert.Equal(t, 3, w.graph.Elements().Len())

	win.ToggleHidden(w.storage)
	w.frame()
	for _, id := range win.Entities() {
		assert.False(t, w.nodes(t, id).Root.Visible)
	}
	assert.False(t, w.nodes(t, win.Close).Root.Interactable)

	closeRoot := w.nodes(t, win.Close).Root
	win.Destroy(w.storage)
	w.frame()
	assert.Equal(t, 0, w.graph.Elements().Len())
	assert.True(t, closeRoot.IsDisposed())
}

func TestSpriteSyncProjectsThroughCamera(t *testing.T) {
	w := newWorld(t)
	sprite := w.storage.Spawn(game.Transform2D{X: 512, Y: 0}, game.SpriteRender{Sheet: sheet})

	w.frame()
	assert.False(t, w.graph.World.Visible, "no camera")

	w.storage.Spawn(game.Camera{Width: game.CameraWidth, Height: game.CameraHeight}, game.Transform2D{Z: 100})
	w.frame()
	require.True(t, w.graph.World.Visible)

	n, ok := w.graph.Sprites().Lookup(sprite)
	require.True(t, ok)
	assert.InDelta(t, 512+512*1024.0/5000, n.Root.X, 1e-3)
	assert.InDelta(t, 384, n.Root.Y, 1e-3)
	assert.InDelta(t, 1024.0/5000, n.Image.ScaleX, 1e-6)
	assert.Equal(t, 32.0, n.Image.PivotX)
	assert.Equal(t, 16.0, n.Image.PivotY)

	w.storage.AddComponent(sprite, game.Mirrored{})
	w.frame()
	assert.InDelta(t, -1024.0/5000, n.Image.ScaleX, 1e-6)
}

func TestSpriteSyncDropsDeletedSprites(t *testing.T) {
	w := newWorld(t)
	sprite := w.storage.Spawn(game.Transform2D{}, game.SpriteRender{Sheet: sheet, Frame: 3})
	w.frame()

	n, ok := w.graph.Sprites().Lookup(sprite)
	require.True(t, ok)
	assert.False(t, n.Image.Visible, "frame out of range")

	w.storage.Delete(sprite)
	w.frame()
	assert.Equal(t, 0, w.graph.Sprites().Len())
	assert.True(t, n.Root.IsDisposed())
}

func TestSpriteSyncShowsDemoFlipSameFrame(t *testing.T) {
	w := newWorld(t)
	w.storage.Spawn(game.Camera{Width: game.CameraWidth, Height: game.CameraHeight}, game.Transform2D{Z: 100})
	sprite := w.storage.Spawn(game.Transform2D{X: 512}, game.SpriteRender{Sheet: sheet})
	w.dispatch(1.0/60, game.Base, game.Adv)

	n, ok := w.graph.Sprites().Lookup(sprite)
	require.True(t, ok)
	require.Positive(t, n.Image.ScaleX)

	// one demo period: the sprite moves left and gains Mirrored through commands
	w.dispatch(game.DemoPeriod, game.Base, game.Adv)
	assert.Negative(t, n.Image.ScaleX)
	moved := 512 - float64(game.CameraWidth)*0.5
	assert.InDelta(t, 512+moved*1024.0/5000, n.Root.X, 1e-3)
}
