package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/pipeline"
	"github.com/matzehuels/cladeview/pkg/topology"
)

const topologyJSON = "json"

// topologyOpts holds the command-line flags for the topology command.
type topologyOpts struct {
	output    string
	format    string
	showIDs   bool
	highlight string
	from, to  string
	layout    layoutFlags
}

// topologyDocument is the JSON form of an indexed graph.
type topologyDocument struct {
	Names []string        `json:"names"`
	Edges []topology.Edge `json:"edges"`
	Path  []int           `json:"path,omitempty"`
}

// topologyCommand creates the topology command for exporting the tree graph.
func (c *CLI) topologyCommand() *cobra.Command {
	var opts topologyOpts

	cmd := &cobra.Command{
		Use:   "topology [tree.nwk]",
		Short: "Export the tree as an indexed graph",
		Long: `Export the tree as an indexed graph.

Nodes are numbered in preorder starting at 0 for the root and every
parent to child link becomes a directed edge. The graph is written as JSON
(names and edges), Graphviz DOT or SVG. With --from and --to the shortest
path between two nodes is computed and highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != topologyJSON && opts.format != pipeline.FormatDOT && opts.format != pipeline.FormatSVG {
				return cverrors.New(cverrors.ErrCodeInvalidInput,
					"invalid format: %q (must be one of: json, dot, svg)", opts.format)
			}
			if (opts.from == "") != (opts.to == "") {
				return cverrors.New(cverrors.ErrCodeInvalidInput, "--from and --to must be given together")
			}
			return c.runTopology(cmd.Context(), cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", topologyJSON, "output format: json, dot, svg")
	cmd.Flags().BoolVar(&opts.showIDs, "show-ids", false, "append node ids to labels")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "comma-separated node names to highlight")
	cmd.Flags().StringVar(&opts.from, "from", "", "path start node")
	cmd.Flags().StringVar(&opts.to, "to", "", "path end node")
	addLayoutFlags(cmd, &opts.layout)

	return cmd
}

func (c *CLI) runTopology(ctx context.Context, cmd *cobra.Command, input string, opts *topologyOpts) error {
	res, runner, err := c.layoutTree(ctx, cmd, input, &opts.layout)
	if err != nil {
		return err
	}
	defer runner.Close()

	g, ids := topology.ToIndexedGraph(res.Tree)
	highlight := splitList(opts.highlight)

	var path []int
	if opts.from != "" {
		from, to := res.Tree.Find(opts.from), res.Tree.Find(opts.to)
		if from == nil || to == nil {
			return cverrors.New(cverrors.ErrCodeNotFound, "no path endpoints %q and %q", opts.from, opts.to)
		}
		path, err = g.ShortestPath(ids[from], ids[to])
		if err != nil {
			return err
		}
		if path == nil {
			printWarning("No path from %s to %s", opts.from, opts.to)
		}
		for _, id := range path {
			highlight = append(highlight, g.Name(id))
		}
		c.Logger.Debug("shortest path", "from", opts.from, "to", opts.to, "length", len(path))
	}

	var data []byte
	if opts.format == topologyJSON {
		data, err = json.MarshalIndent(topologyDocument{Names: g.Names(), Edges: g.Edges(), Path: path}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode topology: %w", err)
		}
		data = append(data, '\n')
	} else {
		data, _, err = runner.Render(ctx, res, opts.format, pipeline.RenderOptions{
			ShowIDs:   opts.showIDs,
			Highlight: highlight,
		})
		if err != nil {
			return err
		}
	}

	wrote, err := writeOutput(cmd, opts.output, data)
	if err != nil || !wrote {
		return err
	}
	printSuccess("Topology exported")
	printFile(opts.output)
	printDetail("%d nodes, %d edges, %d component(s)", g.Len(), len(g.Edges()), len(g.Components()))
	return nil
}
