// Package config holds the display, asset and input settings of vn and loads them from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the whole application configuration.
type Config struct {
	Display Display `yaml:"display"`
	Assets  Assets  `yaml:"assets"`
	Input   Input   `yaml:"input"`
	Log     Log     `yaml:"log"`
}

// Display describes the window.
type Display struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	VSync      bool   `yaml:"vsync"`
	Fullscreen bool   `yaml:"fullscreen"`
	Resizable  bool   `yaml:"resizable"`
	// TPS is the number of updates per second. Zero keeps the runtime default.
	TPS int `yaml:"tps"`
}

// Assets points at optional files replacing the built-in placeholders.
type Assets struct {
	MenuBackground string `yaml:"menu_background"`
	Font           string `yaml:"font"`
	SpriteSheet    string `yaml:"sprite_sheet"`
	SpriteFrames   int    `yaml:"sprite_frames"`
}

// Input names the keys the game reacts to.
type Input struct {
	ToggleKey string `yaml:"toggle_key"`
}

// Log configures the root logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration: a 1024x768 vsynced window titled "VN".
func Default() Config {
	return Config{
		Display: Display{
			Title:     "VN",
			Width:     1024,
			Height:    768,
			VSync:     true,
			Resizable: true,
		},
		Assets: Assets{
			SpriteFrames: 1,
		},
		Input: Input{
			ToggleKey: "Space",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Parse overlays YAML data on the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML file and overlays it on the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height))
	}
	if c.Display.TPS < 0 {
		errs = append(errs, fmt.Errorf("display tps must not be negative, got %d", c.Display.TPS))
	}
	if c.Assets.SpriteFrames <= 0 {
		errs = append(errs, fmt.Errorf("sprite frames must be positive, got %d", c.Assets.SpriteFrames))
	}
	if c.Input.ToggleKey == "" {
		errs = append(errs, errors.New("toggle key must be set"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
