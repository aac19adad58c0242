package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladeview/pkg/pipeline"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		export string
		newick string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.nwk]",
		Short: "Compute a radial layout from a Newick tree",
		Long: `Compute a radial layout from a Newick tree.

The tree is laid out with the equal-angle algorithm, rotated to make the best
use of the viewport and scaled to fit it. Unnamed nodes get synthetic names.
The output is a layout.json file with the scale, a name to position map and
one record per node in postorder. Use "-" to read the tree from stdin.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], &flags, output, export, newick)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&export, "export", "", "also write the laid out tree as a JSON node document")
	cmd.Flags().StringVar(&newick, "newick", "", "also write the named tree as Newick")
	addLayoutFlags(cmd, &flags)

	return cmd
}

// runLayout lays the tree out and writes the requested outputs.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, input string, flags *layoutFlags, output, export, newick string) error {
	res, runner, err := c.layoutTree(ctx, cmd, input, flags)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, _, err := runner.Render(ctx, res, pipeline.FormatJSON, pipeline.RenderOptions{})
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutput(input, ".layout.json")
	}
	wrote, err := writeOutput(cmd, output, data)
	if err != nil {
		return err
	}

	if export != "" {
		var buf bytes.Buffer
		if err := tree.WriteJSON(res.Tree, &buf); err != nil {
			return fmt.Errorf("export tree: %w", err)
		}
		if err := os.WriteFile(export, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write export %s: %w", export, err)
		}
	}
	if newick != "" {
		if err := os.WriteFile(newick, []byte(res.Tree.Newick()+"\n"), 0644); err != nil {
			return fmt.Errorf("write newick %s: %w", newick, err)
		}
	}

	if !wrote {
		return nil
	}
	printSuccess("Layout complete")
	printFile(output)
	for _, extra := range []string{export, newick} {
		if extra != "" {
			printFile(extra)
		}
	}
	printStatLine(layoutStats(res))
	printNewline()
	printNextStep("Preview", "cladeview preview "+input)

	return nil
}
