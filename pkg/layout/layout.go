package layout

import (
	"math"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// ErrEmptyLayout is returned when a tree has too few nodes, or too little
// extent, to be laid out or scaled.
var ErrEmptyLayout = cverrors.New(cverrors.ErrCodeEmptyLayout, "layout has no extent")

const (
	// DefaultRotations is the number of starting directions RescaleToFit tries.
	DefaultRotations = 60
	// DefaultMargin is the fraction of the viewport the layout may fill.
	DefaultMargin = 0.95

	tieTolerance = 1e-9
)

// Options controls layout and fitting.
type Options struct {
	// Direction is the root's direction in radians. Compute only.
	Direction float64
	// Rotations is the number of directions RescaleToFit evaluates.
	Rotations int
	// Margin scales the fitted layout down so it does not touch the edges.
	Margin float64
}

// DefaultOptions returns the standard fitting options.
func DefaultOptions() Options {
	return Options{Rotations: DefaultRotations, Margin: DefaultMargin}
}

func (o Options) withDefaults() Options {
	if o.Rotations <= 0 {
		o.Rotations = DefaultRotations
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	return o
}

// Compute lays t out at unit scale. It sets X, Y, Angle, Radius and
// LeafCount on every node. Nodes with identical angle and radius coincide,
// which is expected for zero-length branches.
func Compute(t *tree.Tree, opts Options) error {
	if t == nil || t.Root == nil {
		return ErrEmptyLayout
	}
	post := t.Postorder()
	for _, n := range post {
		if l := n.BranchLength(); l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return cverrors.New(cverrors.ErrCodeInvalidTree,
				"node %q has invalid branch length %v", n.Name, l)
		}
		if n.IsTip() {
			n.LeafCount = 1
			continue
		}
		n.LeafCount = 0
		for _, c := range n.Children {
			n.LeafCount += c.LeafCount
		}
	}

	root := t.Root
	wedge := geom.TwoPi / float64(root.LeafCount)
	root.X, root.Y, root.Radius = 0, 0, 0
	root.Angle = geom.NormalizeAngle(opts.Direction)

	for _, n := range t.Preorder() {
		start := n.Angle - float64(n.LeafCount)*wedge/2
		for _, c := range n.Children {
			span := float64(c.LeafCount) * wedge
			a := start + span/2
			start += span

			l := c.BranchLength()
			c.X = n.X + l*math.Sin(a)
			c.Y = n.Y + l*math.Cos(a)
			c.Angle = geom.NormalizeAngle(a)
			c.Radius = n.Radius + l
		}
	}
	return nil
}

// Bounds returns the bounding box of the current node positions.
func Bounds(t *tree.Tree) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range t.Preorder() {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

// fit returns the uniform scale that fits a dx by dy extent into w by h.
// A zero extent on one axis leaves only the other axis to constrain it.
func fit(dx, dy, w, h, margin float64) float64 {
	switch {
	case dx == 0 && dy == 0:
		return 0
	case dx == 0:
		return margin * h / dy
	case dy == 0:
		return margin * w / dx
	default:
		return margin * math.Min(w/dx, h/dy)
	}
}

// RescaleToFit lays t out in the direction that fits width by height best,
// scales it by the largest uniform factor that fits, centers it in the
// viewport and returns the factor.
func RescaleToFit(t *tree.Tree, width, height float64, opts Options) (float64, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return 0, cverrors.New(cverrors.ErrCodeInvalidInput,
			"viewport %vx%v must be positive and finite", width, height)
	}
	if t.Len() < 2 {
		return 0, ErrEmptyLayout
	}
	opts = opts.withDefaults()

	best, bestDir := 0.0, 0.0
	for i := 0; i < opts.Rotations; i++ {
		dir := float64(i) / float64(opts.Rotations) * math.Pi
		if err := Compute(t, Options{Direction: dir}); err != nil {
			return 0, err
		}
		minX, minY, maxX, maxY := Bounds(t)
		s := fit(maxX-minX, maxY-minY, width, height, opts.Margin)
		// Directions a quarter turn apart tie in square viewports.
		// The later one wins.
		if s > 0 && s >= best*(1-tieTolerance) {
			best = math.Max(best, s)
			bestDir = dir
		}
	}
	if best == 0 {
		return 0, ErrEmptyLayout
	}

	if err := Compute(t, Options{Direction: bestDir}); err != nil {
		return 0, err
	}
	minX, minY, maxX, maxY := Bounds(t)
	best = fit(maxX-minX, maxY-minY, width, height, opts.Margin)
	midX := width/2 - (maxX+minX)/2*best
	midY := height/2 - (maxY+minY)/2*best
	for _, n := range t.Preorder() {
		n.X = n.X*best + midX
		n.Y = n.Y*best + midY
		n.Radius *= best
	}
	return best, nil
}

// Coords runs RescaleToFit and then translates every node so the root is at
// the origin.
func Coords(t *tree.Tree, width, height float64, opts Options) (float64, error) {
	scale, err := RescaleToFit(t, width, height, opts)
	if err != nil {
		return 0, err
	}
	rx, ry := t.Root.X, t.Root.Y
	for _, n := range t.Preorder() {
		n.X -= rx
		n.Y -= ry
	}
	return scale, nil
}
