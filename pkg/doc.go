// Package pkg provides the core libraries for Cladeview phylogenetic tree layout.
//
// # Overview
//
// Cladeview computes radial (equal-angle) layouts of phylogenetic trees and
// turns subtrees into filled circular sectors ("collapsed clades") that a GPU
// can draw as triangle lists. The pkg directory is organized into these areas:
//
//  1. [tree], [layout], [sector], [clade], [topology] - Domain logic
//  2. [geom] - Angles, vectors and colors shared by the domain packages
//  3. [pipeline] - Orchestration (parse → layout → render)
//  4. [cache], [config], [observability], [httputil] - Infrastructure
//  5. [metadata], [preview] - Annotation tables and raster previews
//
// # Architecture
//
// The typical data flow through Cladeview:
//
//	Newick text
//	     ↓
//	[tree] package (parse, name unlabeled nodes)
//	     ↓
//	[layout] package (equal-angle coordinates, rescale to viewport)
//	     ↓
//	[clade] / [sector] packages (sector vertex buffers)
//	     ↓
//	JSON / DOT / SVG / PNG output
//
// # Quick Start
//
// Lay out a tree and collapse one clade:
//
//	t, _ := pipeline.Parse("((a:1,b:2)c:1,(d:1,e:1)f:1)g;")
//	res, _ := pipeline.GenerateLayout(t, pipeline.Options{Width: 500, Height: 500})
//	buf, _ := clade.Collapse(t.Find("c"), "00ff00")
//
// The [pipeline.Runner] adds caching and metrics on top of the same steps and
// is shared by the CLI and the HTTP server.
//
// # Main Packages
//
// [tree] - Rooted tree model with Newick parsing and traversals.
//
// [layout] - Equal-angle algorithm, viewport fitting with rotations, and the
// serialized layout result.
//
// [sector] - Triangulated sector buffers: build, recolor and concatenate.
//
// [clade] - Angular and radial bounds of a subtree, and its collapsed sector.
//
// [topology] - Indexed graph export with shortest paths, components and DOT.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [httputil] - Remote tree download with retries.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/layout
// [sector]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/sector
// [clade]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/clade
// [topology]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/topology
// [geom]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/geom
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/httputil
// [metadata]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/metadata
// [preview]: https://pkg.go.dev/github.com/matzehuels/cladeview/pkg/preview
package pkg
