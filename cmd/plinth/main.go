// plinth - 3D model viewer
// Shows GLB, glTF and OBJ models on a contact shadow, in the terminal, in a
// window, or as a PNG snapshot.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/plinth/pkg/config"
)

var version = "dev"

// options are the global flags and the config they resolve to.
type options struct {
	configPath string
	logLevel   string

	fps         int
	background  string
	toneMapping string
	exposure    float64
	noShadow    bool
	grid        bool

	cfg config.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "plinth",
		Short: "View 3D models on a contact shadow",
		Long: `plinth renders GLB, glTF and OBJ models with a software rasterizer.
The model is centered, lit, and set on a soft contact shadow.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupLogging(opts.logLevel); err != nil {
				return err
			}
			return opts.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.IntVar(&opts.fps, "fps", 0, "target frames per second")
	pf.StringVar(&opts.background, "bg", "", "background color as hex, e.g. #f0f0f0")
	pf.StringVar(&opts.toneMapping, "tone-mapping", "", "none, linear, reinhard or aces")
	pf.Float64Var(&opts.exposure, "exposure", 0, "tone mapping exposure")
	pf.BoolVar(&opts.noShadow, "no-shadow", false, "hide the contact shadow")
	pf.BoolVar(&opts.grid, "grid", false, "draw a floor grid")

	root.AddCommand(
		newViewCmd(opts),
		newWindowCmd(opts),
		newSnapshotCmd(opts),
		newShadowCmd(opts),
	)
	return root
}

// resolve loads the config file, then applies flags the user set.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
		slog.Debug("config loaded", "path", o.configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FPS = o.fps
	}
	if flags.Changed("bg") {
		cfg.Background = o.background
	}
	if flags.Changed("tone-mapping") {
		cfg.ToneMapping = o.toneMapping
	}
	if flags.Changed("exposure") {
		cfg.Exposure = o.exposure
	}
	if flags.Changed("no-shadow") {
		cfg.Shadow.Enabled = !o.noShadow
	}
	if flags.Changed("grid") {
		cfg.Grid = o.grid
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}
