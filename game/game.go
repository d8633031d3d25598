// Package game is the screen state machine of vn: the menu and game screens, the
// entities they own, and the two tracks of systems they dispatch every frame.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/logging"
	"github.com/DoumanAsh/vn/resources"
	"github.com/DoumanAsh/vn/ui"
)

const (
	// Base runs every frame on every screen.
	Base ecs.Track = "base"
	// Adv runs only while the Game screen is active, after Base.
	Adv ecs.Track = "extended"
	// Render is dispatched by the host after Application.Update, never by a state, so it
	// sees the flushed result of every other track. It exists only when
	// Options.RenderBundles is set.
	Render ecs.Track = "render"
)

// RegisterComponents registers the ui components and the scene components of this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ui.RegisterComponents(registry)
	ecs.RegisterComponent[Transform2D](registry)
	ecs.RegisterComponent[SpriteRender](registry)
	ecs.RegisterComponent[Mirrored](registry)
	ecs.RegisterComponent[Camera](registry)
}

// NewBuilder returns a builder with the ui systems on Base and the demo system on Adv.
func NewBuilder() *ecs.Builder {
	return ecs.NewBuilder().
		WithBundle(Base, ui.Bundle{}).
		WithSystem(Adv, &DemoSystem{}, DemoSystemName)
}

// Options configures New.
type Options struct {
	Loader assets.Loader
	Logger *slog.Logger
	// Workers bounds parallel systems in a stage. Zero or less uses GOMAXPROCS.
	Workers  int
	Settings Settings
	Screen   ui.ScreenDimensions
	// ToggleKey is the key name that flips the dialogue window.
	ToggleKey string
	Clock     Clock
	// Components registers extra component types, for example those of host systems.
	Components []func(*ecs.ComponentRegistry)
	// Bundles are extra Base track bundles, registered after the ui systems.
	Bundles []ecs.Bundle
	// RenderBundles make up the Render track.
	RenderBundles []ecs.Bundle
}

// New assembles the storage, the dispatcher and the resource cache and returns an
// application whose first screen is the menu. The application is not started.
func New(opts Options) (*Application, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("game: asset loader is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.ToggleKey == "" {
		opts.ToggleKey = DefaultToggleKey
	}

	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)
	for _, register := range opts.Components {
		register(registry)
	}
	storage := ecs.NewStorage(registry)

	InstallSettings(storage, opts.Settings)
	ui.InstallEventBus(storage)
	ui.InstallScreen(storage, opts.Screen.Width, opts.Screen.Height)

	builder := NewBuilder()
	for _, bundle := range opts.Bundles {
		builder.WithBundle(Base, bundle)
	}
	for _, bundle := range opts.RenderBundles {
		builder.WithBundle(Render, bundle)
	}
	dispatcher, err := builder.Build(storage, ecs.NewWorkerPool(opts.Workers))
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	data := StateData{
		Storage:    storage,
		Dispatcher: dispatcher,
		Resources:  resources.NewCache(storage, opts.Loader, logging.Component(opts.Logger, "resources")),
		Logger:     logging.Component(opts.Logger, "state"),
		Clock:      opts.Clock,
		ToggleKey:  opts.ToggleKey,
	}
	return NewApplication(NewMenu(), data), nil
}

// unreachable reports a broken internal invariant.
func unreachable(what string) {
	panic("unreachable: " + what)
}
