package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/sector"
)

// sectorCommand creates the sector command for building a single wedge.
func (c *CLI) sectorCommand() *cobra.Command {
	var (
		d      sector.Descriptor
		output string
		single bool
	)

	cmd := &cobra.Command{
		Use:   "sector",
		Short: "Build the vertex buffer of one sector",
		Long: `Build the vertex buffer of one sector.

The sector is given by its apex, its radius and two unordered boundary angles
in radians within [0, 2π). The wedge between them must be narrower than π.
The buffer is written as a JSON array of 1500 numbers: 100 triangles of three
vertices, each vertex as x, y, r, g, b.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Color = c.sectorColor(cmd, d.Color)
			buf, err := sector.Build(d)
			if err != nil {
				return err
			}
			return writeBuffer(cmd, output, buf, single)
		},
	}

	cmd.Flags().Float64Var(&d.CenterX, "center-x", 0, "apex x coordinate")
	cmd.Flags().Float64Var(&d.CenterY, "center-y", 0, "apex y coordinate")
	cmd.Flags().Float64VarP(&d.Radius, "radius", "r", 1, "sector radius")
	cmd.Flags().Float64Var(&d.AngleA, "angle-a", 0, "first boundary angle in radians")
	cmd.Flags().Float64Var(&d.AngleB, "angle-b", 0, "second boundary angle in radians")
	cmd.Flags().StringVarP(&d.Color, "color", "c", "", "six-digit hex color (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&single, "float32", false, "write single-precision values")

	return cmd
}

// recolorCommand creates the recolor command for rewriting buffer colors.
func (c *CLI) recolorCommand() *cobra.Command {
	var (
		color  string
		output string
		single bool
	)

	cmd := &cobra.Command{
		Use:   "recolor [buffer.json]",
		Short: "Change the color of a sector buffer",
		Long: `Change the color of a sector buffer.

Reads a JSON array written by "sector", "pick" or the HTTP API and rewrites the
color of every vertex, leaving the positions untouched. Buffers holding
several concatenated sectors are accepted. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.Context(), cmd, args[0], nil)
			if err != nil {
				return err
			}
			var buf sector.Buffer
			if err := json.Unmarshal(data, &buf); err != nil {
				return cverrors.Wrap(cverrors.ErrCodeMalformedBuffer, err, "decode %s", args[0])
			}
			if _, err := sector.Recolor(buf, c.sectorColor(cmd, color)); err != nil {
				return err
			}
			c.Logger.Debug("recolored buffer", "sectors", buf.Sectors(), "vertices", buf.Vertices())
			return writeBuffer(cmd, output, buf, single)
		},
	}

	cmd.Flags().StringVarP(&color, "color", "c", "", "six-digit hex color (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&single, "float32", false, "write single-precision values")

	return cmd
}

// writeBuffer encodes buf as a JSON array.
func writeBuffer(cmd *cobra.Command, output string, buf sector.Buffer, single bool) error {
	var v any = buf
	if single {
		v = buf.Float32()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode buffer: %w", err)
	}
	wrote, err := writeOutput(cmd, output, append(data, '\n'))
	if err != nil {
		return err
	}
	if wrote {
		printSuccess("Sector buffer written")
		printFile(output)
		printStatLine(bufferStats(buf))
	}
	return nil
}
