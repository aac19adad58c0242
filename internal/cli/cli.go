// Package cli implements the cladeview command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cladeview/pkg/buildinfo"
	"github.com/matzehuels/cladeview/pkg/cache"
	"github.com/matzehuels/cladeview/pkg/config"
	"github.com/matzehuels/cladeview/pkg/httputil"
	"github.com/matzehuels/cladeview/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cladeview"

	// stdinPath reads the tree from standard input.
	stdinPath = "-"
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

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cladeview lays out phylogenetic trees and builds clade sectors",
		Long: `Cladeview computes radial (equal-angle) layouts of phylogenetic trees,
builds the triangulated sector buffers used to draw collapsed clades, and
exports the tree topology as an indexed graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cladeview/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.sectorCommand())
	root.AddCommand(c.recolorCommand())
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	if reason, off := cache.Disabled(cc); off {
		c.Logger.Debug("layout cache disabled", "reason", reason)
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache("--no-cache"), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache("backend none"), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:   c.Config.Cache.RedisAddr,
			Prefix: appName + ":",
		})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "error", err)
			return cache.NewNullCache("redis unavailable"), nil
		}
		return rc, nil
	default:
		dir, err := c.Config.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache("no cache directory"), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags are shared by every command that lays out a tree.
type layoutFlags struct {
	opts    pipeline.Options
	noCache bool
}

func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	f.opts.SetDefaults()
	cmd.Flags().Float64Var(&f.opts.Width, "width", f.opts.Width, "viewport width")
	cmd.Flags().Float64Var(&f.opts.Height, "height", f.opts.Height, "viewport height")
	cmd.Flags().IntVar(&f.opts.Rotations, "rotations", f.opts.Rotations, "rotations tried when fitting the viewport")
	cmd.Flags().Float64Var(&f.opts.Margin, "margin", f.opts.Margin, "fraction of the viewport the tree may fill")
	cmd.Flags().BoolVar(&f.opts.RootOrigin, "root-origin", false, "place the root at (0, 0) instead of centering")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "recompute the layout even if cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// layoutOptions returns the flag values, falling back to the config file for
// flags the user did not set.
func (c *CLI) layoutOptions(cmd *cobra.Command, f *layoutFlags) pipeline.Options {
	opts := f.opts
	flags := cmd.Flags()
	if !flags.Changed("width") {
		opts.Width = c.Config.Layout.Width
	}
	if !flags.Changed("height") {
		opts.Height = c.Config.Layout.Height
	}
	if !flags.Changed("rotations") {
		opts.Rotations = c.Config.Layout.Rotations
	}
	if !flags.Changed("margin") {
		opts.Margin = c.Config.Layout.Margin
	}
	opts.Logger = c.Logger
	return opts
}

// sectorColor returns the --color flag, or the configured default.
func (c *CLI) sectorColor(cmd *cobra.Command, color string) string {
	if cmd.Flags().Changed("color") {
		return color
	}
	return c.Config.Sector.DefaultColor
}

// layoutTree reads a Newick file and lays it out. The caller must close the
// returned runner.
func (c *CLI) layoutTree(ctx context.Context, cmd *cobra.Command, input string, f *layoutFlags) (*pipeline.Result, *pipeline.Runner, error) {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}

	newick, err := readInput(ctx, cmd, input, runner.Cache)
	if err != nil {
		runner.Close()
		return nil, nil, err
	}

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	res, err := runner.Layout(ctx, string(newick), c.layoutOptions(cmd, f))
	if err != nil {
		spinner.StopWithError("Layout failed")
		runner.Close()
		return nil, nil, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d nodes", res.Stats.NodeCount))

	if ctx.Err() != nil {
		runner.Close()
		return nil, nil, ctx.Err()
	}
	return res, runner, nil
}

// =============================================================================
// Input / Output
// =============================================================================

// readInput reads a file, standard input for "-", or an http(s) URL.
// Downloads are cached in c, which may be nil.
func readInput(ctx context.Context, cmd *cobra.Command, path string, c cache.Cache) ([]byte, error) {
	if httputil.IsURL(path) {
		data, cached, err := httputil.NewFetcher(c).Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		loggerFromContext(ctx).Debug("fetched input", "url", path, "bytes", len(data), "cached", cached)
		return data, nil
	}
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty. It reports whether a file was written.
func writeOutput(cmd *cobra.Command, path string, data []byte) (bool, error) {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return false, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write output %s: %w", path, err)
	}
	return true, nil
}

// defaultOutput derives an output path from the input file name.
func defaultOutput(input, suffix string) string {
	if input == stdinPath {
		return ""
	}
	if httputil.IsURL(input) {
		input = path.Base(input)
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// splitList parses a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
