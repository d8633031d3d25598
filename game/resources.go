package game

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/resources"
	"golang.org/x/image/font/gofont/goregular"
)

// Settings is the storage singleton telling resource constructors where optional asset
// files live. Empty paths select the built-in placeholders.
type Settings struct {
	MenuBackground string
	Font           string
	SpriteSheet    string
	SpriteFrames   int
}

// InstallSettings stores s as the Settings singleton.
func InstallSettings(storage *ecs.Storage, s Settings) {
	if s.SpriteFrames <= 0 {
		s.SpriteFrames = 1
	}
	storage.AddSingleton(s)
}

func settingsOf(storage *ecs.Storage) Settings {
	var s *Settings
	if !storage.ReadSingleton(&s) {
		return Settings{SpriteFrames: 1}
	}
	return *s
}

// Built-in UI colors.
var (
	ColorMenuButton        = assets.RGBA(0, 0, 0, 0.5)
	ColorMenuButtonHover   = assets.RGBA8(128, 0, 128, 0.75)
	ColorMenuButtonClicked = assets.RGBA8(138, 0, 138, 0.95)
	ColorMenuBackground    = assets.RGBA8(24, 16, 40, 1)
	ColorCloseButton       = assets.RGBA8(128, 128, 128, 1)
	ColorTextWindow        = assets.RGBA8(128, 0, 128, 0.35)
)

// BackgroundTextures are the menu images.
type BackgroundTextures struct {
	MenuButton        assets.TextureHandle
	MenuButtonHover   assets.TextureHandle
	MenuButtonClicked assets.TextureHandle
	Menu              assets.TextureHandle
}

// AdvTextures are the dialogue window images.
type AdvTextures struct {
	TextBackground  assets.TextureHandle
	CloseBackground assets.TextureHandle
}

// UiResources is every texture and the font the screens build their UI from.
type UiResources struct {
	Font       assets.FontHandle
	Background BackgroundTextures
	Adv        AdvTextures
}

func (r *UiResources) Load(ctx *resources.Context) error {
	settings := settingsOf(ctx.Storage)
	loader := ctx.Loader

	fontData := goregular.TTF
	if settings.Font != "" {
		data, err := os.ReadFile(settings.Font)
		if err != nil {
			return fmt.Errorf("read font: %w", err)
		}
		fontData = data
	}

	var err error
	if r.Font, err = loader.LoadFont(fontData); err != nil {
		return fmt.Errorf("font: %w", err)
	}

	solids := []struct {
		dst   *assets.TextureHandle
		color assets.Color
	}{
		{&r.Background.MenuButton, ColorMenuButton},
		{&r.Background.MenuButtonHover, ColorMenuButtonHover},
		{&r.Background.MenuButtonClicked, ColorMenuButtonClicked},
		{&r.Adv.TextBackground, ColorTextWindow},
		{&r.Adv.CloseBackground, ColorCloseButton},
	}
	for _, s := range solids {
		if *s.dst, err = loader.SolidTexture(s.color); err != nil {
			return err
		}
	}

	if settings.MenuBackground != "" {
		r.Background.Menu, err = loader.LoadTextureFile(settings.MenuBackground)
	} else {
		r.Background.Menu, err = loader.SolidTexture(ColorMenuBackground)
	}
	if err != nil {
		return fmt.Errorf("menu background: %w", err)
	}

	ctx.Logger.Debug("ui resources loaded", slog.Bool("custom_font", settings.Font != ""))
	return nil
}

// Sprites are the character sprite sheets.
type Sprites struct {
	Kaoru assets.SpriteSheetHandle
}

func (s *Sprites) Load(ctx *resources.Context) error {
	settings := settingsOf(ctx.Storage)

	var err error
	s.Kaoru, err = ctx.Loader.LoadSpriteSheet(settings.SpriteSheet, settings.SpriteFrames)
	if err != nil {
		return fmt.Errorf("sprite sheet: %w", err)
	}
	return nil
}
