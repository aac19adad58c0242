package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladeview/internal/server"
	"github.com/matzehuels/cladeview/pkg/observability"
	"github.com/matzehuels/cladeview/pkg/pipeline"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and sector buffers over HTTP",
		Long: `Serve layouts and sector buffers over HTTP.

Trees are uploaded as Newick text to POST /api/trees and laid out with the
configured viewport. Clade sectors, topology and artifacts are then served per
tree id. Prometheus metrics are exposed at /metrics unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noMetrics, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noMetrics, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := server.Options{
		Runner: runner,
		Logger: c.Logger,
		Layout: pipeline.Options{
			Width:     c.Config.Layout.Width,
			Height:    c.Config.Layout.Height,
			Rotations: c.Config.Layout.Rotations,
			Margin:    c.Config.Layout.Margin,
			Logger:    c.Logger,
		},
		DefaultColor: c.Config.Sector.DefaultColor,
	}
	if !noMetrics {
		prom := observability.NewPrometheus()
		prom.Register()
		defer observability.Reset()
		opts.Metrics = prom.Handler()
	}

	printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
	printKeyValue("cache", c.Config.Cache.Backend)
	printKeyValue("viewport", fmt.Sprintf("%gx%g", c.Config.Layout.Width, c.Config.Layout.Height))

	err = server.New(opts).ListenAndServe(ctx, addr)
	if ctx.Err() != nil {
		printInfo("Server stopped")
		return nil
	}
	return err
}

// displayAddr fills in a host for addresses like ":8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
