// Package preview rasterizes a laid out tree and its sector buffers to PNG.
//
// It is a debugging aid, not a renderer: edges are stroked as straight
// segments, tips are dots, and every triangle of every vertex buffer is
// filled with its first vertex's color. The drawing is fitted to the image
// regardless of which coordinate frame the layout is in, with y pointing up.
package preview

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
	"github.com/matzehuels/cladeview/pkg/sector"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// Options configures the image.
type Options struct {
	Width, Height int
	Padding       float64
	Background    geom.Color
	EdgeColor     geom.Color
	TipColor      geom.Color
	LineWidth     float64
	TipRadius     float64
}

// DefaultOptions returns a 800x800 image with a white background.
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     800,
		Padding:    20,
		Background: geom.Color{R: 1, G: 1, B: 1},
		EdgeColor:  geom.Color{R: 0.2, G: 0.2, B: 0.2},
		TipColor:   geom.Color{R: 0.1, G: 0.3, B: 0.7},
		LineWidth:  1.5,
		TipRadius:  2.5,
	}
}

type frame struct {
	scale, offX, offY, height float64
}

func (f frame) at(p geom.Vec) (float64, float64) {
	return p.X*f.scale + f.offX, f.height - (p.Y*f.scale + f.offY)
}

// Render draws t and bufs and writes a PNG to w. bufs are drawn first so
// edges stay visible on top of them.
func Render(w io.Writer, t *tree.Tree, bufs []sector.Buffer, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return cverrors.New(cverrors.ErrCodeInvalidInput,
			"image size %dx%d must be positive", opts.Width, opts.Height)
	}
	for i, b := range bufs {
		if err := b.Check(); err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
	}

	f, err := fitFrame(t, bufs, opts)
	if err != nil {
		return err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.RGB(opts.Background.R, opts.Background.G, opts.Background.B))

	for _, b := range bufs {
		for i := 0; i < b.Vertices()/sector.VertsPerTriangle; i++ {
			tri := b.Triangle(i)
			c := tri[0].Color
			dc.SetRGB(c.R, c.G, c.B)
			dc.MoveTo(f.at(tri[0].Pos))
			dc.LineTo(f.at(tri[1].Pos))
			dc.LineTo(f.at(tri[2].Pos))
			dc.ClosePath()
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("fill sector: %w", err)
			}
		}
	}

	if t != nil && t.Root != nil {
		dc.SetRGB(opts.EdgeColor.R, opts.EdgeColor.G, opts.EdgeColor.B)
		dc.SetLineWidth(opts.LineWidth)
		for _, n := range t.Preorder() {
			for _, c := range n.Children {
				dc.MoveTo(f.at(geom.Vec{X: n.X, Y: n.Y}))
				dc.LineTo(f.at(geom.Vec{X: c.X, Y: c.Y}))
			}
		}
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke edges: %w", err)
		}

		if opts.TipRadius > 0 {
			dc.SetRGB(opts.TipColor.R, opts.TipColor.G, opts.TipColor.B)
			for _, tip := range t.Leaves() {
				x, y := f.at(geom.Vec{X: tip.X, Y: tip.Y})
				dc.DrawCircle(x, y, opts.TipRadius)
				if err := dc.Fill(); err != nil {
					return fmt.Errorf("fill tip: %w", err)
				}
			}
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// fitFrame maps the bounding box of everything drawn into the padded image.
func fitFrame(t *tree.Tree, bufs []sector.Buffer, opts Options) (frame, error) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(p geom.Vec) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if t != nil {
		for _, n := range t.Preorder() {
			add(geom.Vec{X: n.X, Y: n.Y})
		}
	}
	for _, b := range bufs {
		for i := 0; i < b.Vertices(); i++ {
			add(b.Vertex(i).Pos)
		}
	}
	if math.IsInf(minX, 1) {
		return frame{}, cverrors.New(cverrors.ErrCodeEmptyLayout, "nothing to draw")
	}

	w := float64(opts.Width) - 2*opts.Padding
	h := float64(opts.Height) - 2*opts.Padding
	if w <= 0 || h <= 0 {
		return frame{}, cverrors.New(cverrors.ErrCodeInvalidInput, "padding %v leaves no room", opts.Padding)
	}
	dx, dy := maxX-minX, maxY-minY
	scale := 1.0
	switch {
	case dx > 0 && dy > 0:
		scale = math.Min(w/dx, h/dy)
	case dx > 0:
		scale = w / dx
	case dy > 0:
		scale = h / dy
	}
	return frame{
		scale:  scale,
		offX:   float64(opts.Width)/2 - (minX+maxX)/2*scale,
		offY:   float64(opts.Height)/2 - (minY+maxY)/2*scale,
		height: float64(opts.Height),
	}, nil
}
