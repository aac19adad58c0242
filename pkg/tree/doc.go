// Package tree provides the rooted, ordered tree that layouts and sectors are
// computed over.
//
// # Overview
//
// A [Tree] owns its nodes through the [Node.Children] slices. Each node also
// keeps a back-link to its parent for upward walks; the back-link never owns
// anything and is only maintained by [Node.AddChild] and [New].
//
// Child order matters. [Tree.Postorder] and [Tree.Preorder] visit children
// left to right, and every downstream pass (naming, layout, topology ids)
// inherits that order, so results are deterministic for a given input.
//
// # Loading Trees
//
// Trees are usually read from Newick text:
//
//	t, err := tree.ParseNewick("((a:1,b:2)c:1)d:0;")
//	if err != nil {
//	    return err
//	}
//	tree.NameUnlabeled(t)
//
// [NameUnlabeled] fills in the two defaults the rest of the system relies on:
// a branch length of 1 for nodes without one and a synthetic name for nodes
// without a label. Call it once per tree, before layout.
//
// # Layout Fields
//
// [Node.X], [Node.Y], [Node.Angle], [Node.Radius] and [Node.LeafCount] are
// written by the layout package. They are zero until a layout has run and are
// what [Tree.Export] serializes.
package tree
