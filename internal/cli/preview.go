package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/metadata"
	"github.com/matzehuels/cladeview/pkg/pipeline"
	"github.com/matzehuels/cladeview/pkg/preview"
	"github.com/matzehuels/cladeview/pkg/sector"
)

// previewOpts holds the command-line flags for the preview command.
type previewOpts struct {
	output   string
	size     int
	clades   string
	color    string
	metadata string
	column   string
	value    string
	sep      string
	skipRows int
	layout   layoutFlags
}

// previewCommand creates the preview command for rasterizing a tree.
func (c *CLI) previewCommand() *cobra.Command {
	var opts previewOpts

	cmd := &cobra.Command{
		Use:   "preview [tree.nwk]",
		Short: "Rasterize a laid out tree to PNG",
		Long: `Rasterize a laid out tree to PNG.

Edges are drawn as straight segments between parent and child. Clades named
with --clade, or selected from a metadata table with --metadata, --column and
--value, are collapsed into filled sectors drawn under the tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.metadata != "" && (opts.column == "" || opts.value == "") {
				return cverrors.New(cverrors.ErrCodeInvalidInput, "--metadata needs --column and --value")
			}
			if opts.size <= 0 {
				return cverrors.New(cverrors.ErrCodeInvalidInput, "--size %d must be positive", opts.size)
			}
			if len([]rune(opts.sep)) > 1 {
				return cverrors.New(cverrors.ErrCodeInvalidInput, "--sep must be a single character")
			}
			return c.runPreview(cmd.Context(), cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.png)")
	cmd.Flags().IntVar(&opts.size, "size", preview.DefaultOptions().Width, "image width and height in pixels")
	cmd.Flags().StringVar(&opts.clades, "clade", "", "comma-separated clade roots to collapse")
	cmd.Flags().StringVarP(&opts.color, "color", "c", "", "sector hex color (default from config)")
	cmd.Flags().StringVar(&opts.metadata, "metadata", "", "metadata table keyed by node id")
	cmd.Flags().StringVar(&opts.column, "column", "", "metadata column to match")
	cmd.Flags().StringVar(&opts.value, "value", "", "metadata value selecting clades")
	cmd.Flags().StringVar(&opts.sep, "sep", "", "metadata separator: tab (default), a character, or \" \" for whitespace")
	cmd.Flags().IntVar(&opts.skipRows, "skip-rows", 0, "metadata lines to skip before the header")
	addLayoutFlags(cmd, &opts.layout)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, cmd *cobra.Command, input string, opts *previewOpts) error {
	res, runner, err := c.layoutTree(ctx, cmd, input, &opts.layout)
	if err != nil {
		return err
	}
	defer runner.Close()

	color := c.sectorColor(cmd, opts.color)
	var bufs []sector.Buffer
	for _, name := range splitList(opts.clades) {
		buf, err := pipeline.Collapse(res, name, color)
		if err != nil {
			return fmt.Errorf("collapse %s: %w", name, err)
		}
		bufs = append(bufs, buf)
	}

	if opts.metadata != "" {
		selected, err := c.selectClades(res, opts, color)
		if err != nil {
			return err
		}
		bufs = append(bufs, selected...)
	}

	p := preview.DefaultOptions()
	p.Width, p.Height = opts.size, opts.size
	data, _, err := runner.Render(ctx, res, pipeline.FormatPNG, pipeline.RenderOptions{
		Sectors: bufs,
		Preview: p,
	})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = defaultOutput(input, ".png")
	}
	wrote, err := writeOutput(cmd, output, data)
	if err != nil || !wrote {
		return err
	}
	printSuccess("Preview rendered")
	printFile(output)
	printStatLine(layoutStats(res))
	if len(bufs) > 0 {
		printDetail("%d collapsed clade(s)", len(bufs))
	}
	return nil
}

// selectClades collapses every internal node whose metadata column matches.
// Tips cannot be collapsed and are skipped.
func (c *CLI) selectClades(res *pipeline.Result, opts *previewOpts, color string) ([]sector.Buffer, error) {
	mo := metadata.Options{SkipRows: opts.skipRows}
	if opts.sep != "" {
		mo.Separator = []rune(opts.sep)[0]
	}
	table, err := metadata.ReadFile(opts.metadata, mo)
	if err != nil {
		return nil, err
	}

	sel, err := pipeline.SelectClades(res, table, opts.column, opts.value, color)
	if err != nil {
		return nil, err
	}
	for _, id := range sel.Missing {
		c.Logger.Warn("metadata id not in tree", "id", id)
	}
	for _, id := range sel.Tips {
		c.Logger.Debug("skipping tip", "id", id)
	}
	c.Logger.Info("selected clades", "column", opts.column, "value", opts.value, "count", len(sel.Clades))
	return sel.Buffers, nil
}
