package host

import (
	"math"
	"strings"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/game"
	"github.com/DoumanAsh/vn/ui"
	"github.com/phanxgames/willow"
)

// System names registered by RenderBundle.
const (
	UiSyncSystemName     = "host_ui_sync"
	SpriteSyncSystemName = "host_sprite_sync"
)

// zScale keeps fractional UI layers such as 1.5 apart once they become willow z indices.
const zScale = 10

// SceneGraph is the storage singleton holding the willow scene the sync systems write.
// World holds sprites and sits below Ui, which holds UI elements.
type SceneGraph struct {
	Scene   *willow.Scene
	World   *willow.Node
	Ui      *willow.Node
	Library Library

	ui    *NodeRegistry
	world *NodeRegistry
}

// InstallScene adds the world and ui layers under the scene root, stores the graph as a
// singleton and returns it.
func InstallScene(storage *ecs.Storage, scene *willow.Scene, library Library) *SceneGraph {
	worldLayer := willow.NewContainer("world")
	worldLayer.Interactable = false
	uiLayer := willow.NewContainer("ui")
	uiLayer.Interactable = true
	uiLayer.SetZIndex(1)
	scene.Root().AddChild(worldLayer)
	scene.Root().AddChild(uiLayer)

	storage.AddSingleton(SceneGraph{
		Scene:   scene,
		World:   worldLayer,
		Ui:      uiLayer,
		Library: library,
		ui:      NewNodeRegistry(),
		world:   NewNodeRegistry(),
	})
	var g *SceneGraph
	storage.ReadSingleton(&g)
	return g
}

// Elements returns the registry of UI element nodes.
func (g *SceneGraph) Elements() *NodeRegistry {
	return g.ui
}

// Sprites returns the registry of sprite nodes.
func (g *SceneGraph) Sprites() *NodeRegistry {
	return g.world
}

func zIndex(z float32) int {
	return int(math.Round(float64(z) * zScale))
}

func toWillow(c assets.Color) willow.Color {
	return willow.Color{R: float64(c.R()), G: float64(c.G()), B: float64(c.B()), A: float64(c.A())}
}

func toAlign(a ui.TextAlign) willow.TextAlign {
	switch a {
	case ui.AlignLeft:
		return willow.TextAlignLeft
	case ui.AlignRight:
		return willow.TextAlignRight
	}
	return willow.TextAlignCenter
}

// textKey is what a willow text node bakes in when it is created.
type textKey struct {
	content string
	font    assets.FontHandle
	size    float32
	color   assets.Color
	width   float32
}

// UiSyncSystem mirrors laid out UI elements into the ui layer. Interactive elements are
// tagged with their entity slot so willow reports pointer events for them.
type UiSyncSystem struct {
	Graph    ecs.Singleton[SceneGraph]
	Elements ecs.Query[struct {
		Id ecs.EntityId
		*ui.Transform
		Image       *ui.Image       `ecs:"optional"`
		Text        *ui.Text        `ecs:"optional"`
		Interactive *ui.Interactive `ecs:"optional"`
	}] `access:"read"`
}

func (s *UiSyncSystem) Execute(*ecs.UpdateFrame) {
	g := s.Graph.Get()
	if g == nil || g.Scene == nil {
		return
	}

	g.ui.Begin()
	for item := range s.Elements.Values() {
		n := g.ui.Ensure(item.Id, g.Ui, item.Transform.Id)
		g.syncElement(n, item.Transform, item.Image, item.Text, item.Interactive != nil)
	}
	g.ui.Sweep()
}

func (g *SceneGraph) syncElement(n *EntityNodes, t *ui.Transform, img *ui.Image, text *ui.Text, interactive bool) {
	tag := slot(n.Id)
	n.Root.Visible = t.Visible
	n.Root.Interactable = interactive
	n.Root.SetPosition(float64(t.Rect.X), float64(t.Rect.Y))
	n.Root.SetZIndex(zIndex(t.GlobalZ))

	switch {
	case img == nil && n.Image != nil:
		n.Image.Dispose()
		n.Image = nil
	case img != nil:
		if n.Image == nil {
			n.Image = willow.NewSprite(t.Id+"/image", willow.TextureRegion{})
			n.Root.AddChild(n.Image)
		}
		tex := g.Library.Image(img.Texture)
		n.Image.SetCustomImage(tex)
		n.Image.Visible = tex != nil
		n.Image.Color = toWillow(img.Tint)
		n.Image.Interactable = interactive
		n.Image.EntityID = tag
		if tex != nil {
			b := tex.Bounds()
			n.Image.SetScale(float64(t.Rect.Width)/float64(b.Dx()), float64(t.Rect.Height)/float64(b.Dy()))
		}
	}

	if text == nil || text.Text == "" {
		if n.Text != nil {
			n.Text.Dispose()
			n.Text = nil
		}
		return
	}
	font := g.Library.Font(text.Font, text.FontSize)
	if font == nil {
		return
	}

	key := textKey{content: text.Text, font: text.Font, size: text.FontSize, color: text.Color}
	if text.Wrap {
		key.width = t.Rect.Width
	}
	if n.Text == nil || n.text != key {
		if n.Text != nil {
			n.Text.Dispose()
		}
		n.Text = willow.NewText(t.Id+"/text", wrapText(font, key.content, float64(key.width)), font)
		n.Text.TextBlock.Color = toWillow(key.color)
		n.Text.TextBlock.Align = toAlign(text.Align)
		n.Text.SetZIndex(1)
		n.Root.AddChild(n.Text)
		n.text = key
	}
	n.Text.Interactable = interactive
	n.Text.EntityID = tag

	w, h := font.MeasureString(n.Text.TextBlock.Content)
	x, y := placeText(text, t.Rect, w, h)
	n.Text.SetPosition(x, y)
}

// placeText returns the offset of a text block of size w by h inside rect. Wrapped text
// starts at the top, anything else is centered vertically.
func placeText(text *ui.Text, rect ui.Rect, w, h float64) (x, y float64) {
	switch text.Align {
	case ui.AlignLeft:
	case ui.AlignRight:
		x = float64(rect.Width) - w
	default:
		x = (float64(rect.Width) - w) / 2
	}
	if !text.Wrap {
		y = (float64(rect.Height) - h) / 2
	}
	return x, y
}

// wrapText breaks s into lines no wider than width, splitting at spaces. Words wider than
// width get a line of their own. A width of zero or less leaves s unchanged.
func wrapText(font willow.Font, s string, width float64) string {
	if width <= 0 {
		return s
	}

	var out strings.Builder
	for i, paragraph := range strings.Split(s, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}
		line := ""
		for _, word := range strings.Fields(paragraph) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if w, _ := font.MeasureString(candidate); w > width && line != "" {
				out.WriteString(line)
				out.WriteByte('\n')
				line = word
				continue
			}
			line = candidate
		}
		out.WriteString(line)
	}
	return out.String()
}

// SpriteSyncSystem mirrors sprites into the world layer, projected through the first
// camera so that the camera position lands on the screen center. Without a camera the
// world layer is hidden.
type SpriteSyncSystem struct {
	Graph   ecs.Singleton[SceneGraph]
	Screen  ecs.Singleton[ui.ScreenDimensions] `access:"read"`
	Cameras ecs.Query[struct {
		*game.Camera
		*game.Transform2D
	}] `access:"read"`
	Sprites ecs.Query[struct {
		Id ecs.EntityId
		*game.Transform2D
		*game.SpriteRender
		Mirrored *game.Mirrored `ecs:"optional"`
	}] `access:"read"`
}

// projection maps world units to screen pixels.
type projection struct {
	scaleX, scaleY   float64
	originX, originY float64
	camX, camY       float64
}

func newProjection(screen ui.ScreenDimensions, cam *game.Camera, at *game.Transform2D) (projection, bool) {
	if cam.Width <= 0 || cam.Height <= 0 {
		return projection{}, false
	}
	return projection{
		scaleX:  float64(screen.Width / cam.Width),
		scaleY:  float64(screen.Height / cam.Height),
		originX: float64(screen.Width) / 2,
		originY: float64(screen.Height) / 2,
		camX:    float64(at.X),
		camY:    float64(at.Y),
	}, true
}

// point converts a Y-up world position to Y-down screen pixels.
func (p projection) point(x, y float32) (float64, float64) {
	return p.originX + (float64(x)-p.camX)*p.scaleX, p.originY - (float64(y)-p.camY)*p.scaleY
}

func (s *SpriteSyncSystem) Execute(*ecs.UpdateFrame) {
	g := s.Graph.Get()
	if g == nil || g.Scene == nil {
		return
	}
	var screen ui.ScreenDimensions
	if sd := s.Screen.Get(); sd != nil {
		screen = *sd
	}

	var proj projection
	found := false
	for cam := range s.Cameras.Values() {
		proj, found = newProjection(screen, cam.Camera, cam.Transform2D)
		break
	}
	g.World.Visible = found

	g.world.Begin()
	for item := range s.Sprites.Values() {
		n := g.world.Ensure(item.Id, g.World, "sprite")
		if n.Image == nil {
			n.Image = willow.NewSprite("sprite/frame", willow.TextureRegion{})
			n.Root.AddChild(n.Image)
		}
		frame := g.Library.Frame(item.SpriteRender.Sheet, item.SpriteRender.Frame)
		n.Image.SetCustomImage(frame)
		n.Image.Visible = frame != nil
		n.Root.Interactable = false

		x, y := proj.point(item.Transform2D.X, item.Transform2D.Y)
		n.Root.SetPosition(x, y)
		n.Root.SetZIndex(zIndex(item.Transform2D.Z))

		flip := 1.0
		if item.Mirrored != nil {
			flip = -1
		}
		n.Image.SetScale(flip*proj.scaleX, proj.scaleY)
		if frame != nil {
			b := frame.Bounds()
			n.Image.SetPivot(float64(b.Dx())/2, float64(b.Dy())/2)
		}
	}
	g.world.Sweep()
}

// RenderBundle registers the sync systems on the game.Render track, which runs after
// every other track has flushed its commands. Both sync systems write the SceneGraph
// singleton so they never run concurrently.
type RenderBundle struct{}

func (RenderBundle) Register(tb *ecs.TrackBuilder) error {
	tb.Add(&UiSyncSystem{}, UiSyncSystemName).
		Add(&SpriteSyncSystem{}, SpriteSyncSystemName, UiSyncSystemName)
	return nil
}
