// Package topology exposes a tree as a plain integer-indexed graph.
//
// [ToIndexedGraph] numbers the nodes of a tree densely in preorder, so the
// root is always 0, and records one directed edge per parent to child link.
// The resulting [Graph] offers the general graph operations that tree code
// does not need: neighbor queries by direction, shortest paths between
// arbitrary nodes and connected components.
//
// [ToDOT] and [RenderSVG] draw the graph with Graphviz for debugging and
// documentation.
package topology
