// Package layout places the nodes of a tree in the plane with an
// equal-angle unrooted layout.
//
// # Algorithm
//
// Every leaf receives the same angular wedge, 2π divided by the number of
// leaves. An internal node's wedge is the union of its leaves' wedges, and
// its direction is the middle of that wedge. Walking down from the root, each
// node is placed at its parent's position plus its branch length along its
// direction:
//
//	x = parent.x + length * sin(angle)
//	y = parent.y + length * cos(angle)
//
// The root sits at the origin and its own branch length is ignored.
//
// # Fitting a Viewport
//
// The shape of an unrooted layout does not depend on where the first wedge
// starts, but its bounding box does. [RescaleToFit] tries [Options.Rotations]
// starting directions over half a turn, keeps the one that allows the largest
// uniform scale, and then scales and centers the layout in the viewport.
// Directions whose scales agree to within a relative 1e-9 are ties, and the
// later direction wins.
// [Coords] additionally translates the result so the root is at the origin,
// which is the frame renderers draw in.
//
// All functions mutate the tree in place and are not safe for concurrent use
// on the same tree.
package layout
