// Package cli implements the karmyc command-line interface.
//
// Layouts live in JSON files (the {rootId, layout, areas} snapshot). The edit
// commands load a file, apply one engine operation and write the repaired
// result back. render turns a layout into SVG, PNG, PDF or a Graphviz tree;
// store moves layouts between files and the configured backend; serve runs
// the HTTP API; tui edits a layout with the mouse in the terminal.
//
// Every command accepts --verbose (-v) for debug logging. The logger travels
// in the command context, see withLogger.
package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/buildinfo"
	"github.com/matzehuels/karmyc/pkg/config"
	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/registry"
	"github.com/matzehuels/karmyc/pkg/screen"
	"github.com/matzehuels/karmyc/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "karmyc"

	// defaultLayoutFile is used by commands whose file argument is optional.
	defaultLayoutFile = "layout.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer // activity lines
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Karmyc edits tiled area layouts",
		Long: `Karmyc is a layout engine for tiled workspaces. A layout is a tree of rows
and areas stored as JSON; the commands below edit, inspect, render, persist
and serve such layouts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		c.SetLogLevel(levelFor(c.verbose))
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(withLogger(ctx, c.Logger))
	}

	root.AddCommand(c.newCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.splitCommand())
	root.AddCommand(c.joinCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.insertCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.dropCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.sizesCommand())
	root.AddCommand(c.gcCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// loadConfig reads the --config file, or the default path when unset.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", path, "store", cfg.Store.Backend)
	return cfg, nil
}

// newEngine creates a layout engine with the built-in area types and random
// ids.
func (c *CLI) newEngine(cfg config.Config) *layout.Engine {
	return layout.NewEngine(cfg.EngineOptions(), registry.Builtin(), layout.UUIDGenerator{}, c.Logger)
}

// newManager opens the configured store and wraps it in a screen manager.
func (c *CLI) newManager(ctx context.Context, cfg config.Config) (*screen.Manager, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return screen.NewManager(c.newEngine(cfg), screen.Options{
		Store:   st,
		Keyer:   cfg.Store.Keyer(),
		TTL:     cfg.Store.TTL,
		Gesture: cfg.GestureOptions(),
		Bounds:  cfg.Bounds(),
		Logger:  c.Logger,
	}), nil
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	return geom.Point{X: x, Y: y}, nil
}

// parseSizes parses a comma-separated list of fractions.
func parseSizes(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "size %q", p)
		}
		out = append(out, f)
	}
	return out, nil
}

func parseOrientation(s string) (layout.Orientation, error) {
	o := layout.Orientation(strings.ToLower(s))
	if !o.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "orientation %q must be horizontal or vertical", s)
	}
	return o, nil
}

func parsePlacement(s string) (layout.Placement, error) {
	p := layout.Placement(strings.ToLower(s))
	if !p.Valid() {
		return "", errors.New(errors.ErrCodeInvalidPlacement, "placement %q must be top, left, right, bottom or replace", s)
	}
	return p, nil
}
