// Command vn runs the visual novel: in a window through ebiten, or headless for a fixed
// number of frames with assets that are never decoded.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/config"
	"github.com/DoumanAsh/vn/game"
	"github.com/DoumanAsh/vn/host"
	"github.com/DoumanAsh/vn/logging"
	"github.com/DoumanAsh/vn/ui"
	"github.com/google/uuid"
	"github.com/pkg/profile"
)

// headlessDelta is the frame time of headless runs when the config sets no TPS.
const headlessDelta = 1.0 / 60

type flags struct {
	config    string
	logLevel  string
	logFormat string
	workers   int
	headless  bool
	frames    int
	debugUI   bool
	profile   string
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("vn", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.config, "config", "", "Path to a YAML config file overriding the defaults.")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error. Overrides the config.")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: text or json. Overrides the config.")
	fs.IntVar(&f.workers, "workers", 0, "Systems run in parallel within a stage. 0 uses GOMAXPROCS.")
	fs.BoolVar(&f.headless, "headless", false, "Run without a window.")
	fs.IntVar(&f.frames, "frames", 600, "Frames to run headless. 0 runs until interrupted.")
	fs.BoolVar(&f.debugUI, "debug-ui", false, "Show the ImGui entity and performance windows.")
	fs.StringVar(&f.profile, "profile", "", "Write a profile to the working directory: cpu, mem or trace.")
	err := fs.Parse(args)
	return f, err
}

func loadConfig(f flags) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return config.Config{}, err
		}
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Log, output io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: cfg.Format,
		Output: output,
		Attrs:  map[string]any{"run_id": uuid.NewString()},
	}), nil
}

func startProfile(mode string) (interface{ Stop() }, error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	case "trace":
		opt = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q", mode)
	}
	return profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet), nil
}

func gameOptions(cfg config.Config, workers int, logger *slog.Logger) game.Options {
	return game.Options{
		Logger:  logger,
		Workers: workers,
		Settings: game.Settings{
			MenuBackground: cfg.Assets.MenuBackground,
			Font:           cfg.Assets.Font,
			SpriteSheet:    cfg.Assets.SpriteSheet,
			SpriteFrames:   cfg.Assets.SpriteFrames,
		},
		ToggleKey: cfg.Input.ToggleKey,
	}
}

func runHeadless(ctx context.Context, cfg config.Config, opts game.Options, frames int) error {
	opts.Loader = assets.NewMemoryLoader()
	opts.Screen = ui.ScreenDimensions{Width: float32(cfg.Display.Width), Height: float32(cfg.Display.Height)}
	app, err := game.New(opts)
	if err != nil {
		return err
	}

	dt := headlessDelta
	if cfg.Display.TPS > 0 {
		dt = 1 / float64(cfg.Display.TPS)
	}
	source := &game.FixedSource{Frames: frames, DeltaTime: dt}
	err = app.Run(ctx, source)
	opts.Logger.Info("headless run finished", slog.Int("frames", source.Frame()))
	return err
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(stderr, "vn: %v\n", err)
		return 2
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "vn: %v\n", err)
		return 2
	}

	p, err := startProfile(f.profile)
	if err != nil {
		logger.Error("profiling", slog.Any("error", err))
		return 2
	}
	if p != nil {
		defer p.Stop()
	}

	opts := gameOptions(cfg, f.workers, logger)
	if f.headless {
		err = runHeadless(ctx, cfg, opts, f.frames)
	} else {
		err = host.Run(host.Options{Display: cfg.Display, Game: opts, DebugUI: f.debugUI})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("vn stopped", slog.Any("error", err))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
