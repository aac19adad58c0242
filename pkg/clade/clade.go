// Package clade turns a laid out subtree into the wedge that covers it.
//
// A collapsed clade is drawn as a sector anchored at the clade root. Its two
// boundary angles are the directions from the clade root to the first and
// the last tip (in drawing order), and its radius is the distance to the
// furthest tip.
package clade

import (
	"math"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/geom"
	"github.com/matzehuels/cladeview/pkg/sector"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// Shape is the wedge covering a clade.
type Shape struct {
	Center geom.Vec
	Radius float64
	// AngleA and AngleB are the math-convention directions of the first and
	// last tips as seen from Center.
	AngleA float64
	AngleB float64
	// Start and Sweep describe the same wedge explicitly, counterclockwise
	// from the last tip to the first. They are valid for any width.
	Start float64
	Sweep float64
	Tips  int
}

// Bounds computes the wedge covering the clade rooted at n. The tree must
// have been laid out. Tips that coincide with n are ignored when picking the
// boundary directions.
func Bounds(n *tree.Node) (Shape, error) {
	if n == nil || n.IsTip() {
		return Shape{}, cverrors.New(cverrors.ErrCodeInvalidInput, "clade root must be an internal node")
	}

	center := geom.Vec{X: n.X, Y: n.Y}
	var first, last geom.Vec
	found := false
	radius := 0.0
	tips := tree.Leaves(n)
	for _, tip := range tips {
		v := geom.Vec{X: tip.X, Y: tip.Y}.Sub(center)
		d := v.Len()
		if d == 0 {
			continue
		}
		if !found {
			first, found = v, true
		}
		last = v
		radius = math.Max(radius, d)
	}
	if !found {
		return Shape{}, cverrors.New(cverrors.ErrCodeEmptyLayout,
			"clade %q has no tip away from its root", n.Name)
	}

	a, b := geom.VectorAngle(first), geom.VectorAngle(last)
	return Shape{
		Center: center,
		Radius: radius,
		AngleA: a,
		AngleB: b,
		Start:  b,
		Sweep:  geom.NormalizeAngle(a - b),
		Tips:   len(tips),
	}, nil
}

// Descriptor returns the sector descriptor for s in color hex. The
// descriptor only describes s faithfully when s.Sweep is below π.
func (s Shape) Descriptor(hex string) sector.Descriptor {
	return sector.Descriptor{
		CenterX: s.Center.X,
		CenterY: s.Center.Y,
		Radius:  s.Radius,
		AngleA:  s.AngleA,
		AngleB:  s.AngleB,
		Color:   hex,
	}
}

// Sector returns the descriptor for the clade rooted at n in color hex.
func Sector(n *tree.Node, hex string) (sector.Descriptor, error) {
	s, err := Bounds(n)
	if err != nil {
		return sector.Descriptor{}, err
	}
	return s.Descriptor(hex), nil
}

// Collapse builds the vertex buffer covering the clade rooted at n. Two
// unordered angles cannot describe a clade spanning π or more, so those are
// built from the explicit span.
func Collapse(n *tree.Node, hex string) (sector.Buffer, error) {
	s, err := Bounds(n)
	if err != nil {
		return nil, err
	}
	if s.Sweep < math.Pi {
		return sector.Build(s.Descriptor(hex))
	}
	c, err := geom.DecodeColor(hex)
	if err != nil {
		return nil, err
	}
	return sector.BuildSpan(s.Center, s.Radius, s.Start, s.Sweep, c)
}
