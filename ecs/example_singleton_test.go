package ecs_test

import (
	"fmt"
	"reflect"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/game"
	"github.com/DoumanAsh/vn/ui"
)

// ExampleNewSingleton keeps the screen size as a singleton. An accessor created before
// the host reports a new size sees the update, since AddSingleton replaces in place.
func ExampleNewSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	screen := ecs.NewSingleton[ui.ScreenDimensions](storage, ui.ScreenDimensions{Width: 1024, Height: 768})
	fmt.Printf("screen %.0fx%.0f\n", screen.Get().Width, screen.Get().Height)

	ui.InstallScreen(storage, 1280, 720)
	fmt.Printf("resized %.0fx%.0f\n", screen.Get().Width, screen.Get().Height)

	// an initializer is ignored once the singleton exists
	again := ecs.NewSingleton[ui.ScreenDimensions](storage, ui.ScreenDimensions{Width: 1})
	fmt.Println("same value:", again.Get() == screen.Get())

	// Output:
	// screen 1024x768
	// resized 1280x720
	// same value: true
}

// ExampleSingleton_Exists shows an accessor observing the removal of its singleton.
func ExampleSingleton_Exists() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	bus := ui.InstallEventBus(storage)

	events := ecs.NewSingleton[ui.UiEvents](storage)
	fmt.Println("installed:", events.Exists(), events.Get().Bus == bus)

	storage.RemoveSingleton(reflect.TypeFor[ui.UiEvents]())
	fmt.Println("after remove:", events.Exists(), events.Get() == nil)

	// Output:
	// installed: true true
	// after remove: false true
}

// ExampleStorage_ReadSingleton reads the game settings outside of any system.
func ExampleStorage_ReadSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	game.InstallSettings(storage, game.Settings{SpriteSheet: "sprites.png", SpriteFrames: 4})

	var settings *game.Settings
	if storage.ReadSingleton(&settings) {
		fmt.Printf("sheet %s, %d frames\n", settings.SpriteSheet, settings.SpriteFrames)
	}

	var screen *ui.ScreenDimensions
	fmt.Println("screen installed:", storage.ReadSingleton(&screen))

	// Output:
	// sheet sprites.png, 4 frames
	// screen installed: false
}
