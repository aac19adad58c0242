// Package geom provides the angle and color primitives shared by the layout
// engine and the sector builder.
//
// Angles are radians. Unless stated otherwise they are expected in the
// half-open range [0, 2π), measured counter-clockwise from the positive x axis.
//
// # Quadrants
//
// [ClassifyQuadrant] only distinguishes the first and the fourth quadrant,
// because those are the two that matter when a wedge straddles angle 0.
// Boundary angles (0, π/2, 3π/2, 2π) belong to neither.
//
// # Colors
//
// Colors travel through the system as 6-digit hex strings ("ff0000") and are
// decoded into normalized channels with [DecodeColor]:
//
//	c, err := geom.DecodeColor("1f77b4")
//	if err != nil {
//	    return err // errors.Is(err, geom.ErrInvalidColor)
//	}
//	fmt.Println(c.R, c.G, c.B)
package geom
