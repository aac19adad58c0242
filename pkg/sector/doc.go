// Package sector builds triangulated vertex buffers for angular wedges.
//
// # Overview
//
// A sector is a "pie slice" drawn over a collapsed or highlighted clade. The
// GPU consumes it as a flat []float64 laid out as a triangle fan:
//
//	| x y r g b | x y r g b | x y r g b |   triangle 0 (center, arc start, arc end)
//	| x y r g b | x y r g b | x y r g b |   triangle 1
//	...                                     NumTriangles triangles in total
//
// Every sector has exactly [NumTriangles] triangles of [VertsPerTriangle]
// vertices, each vertex holding [ElementsPerVertex] values, so a single sector
// buffer is always [BufferLen] values long. Buffers of several sectors are
// simple concatenations.
//
// # Span Resolution
//
// Callers usually know a wedge only by its two boundary angles, with no
// ordering. [ResolveSpan] turns them into a start angle and a non-negative
// sweep, assuming the wedge is narrower than π:
//
//   - One boundary in Q1 and the other in Q4: the wedge wraps through 0 and
//     starts at the larger angle.
//   - Boundaries more than π apart: the wedge also wraps through 0, starting at
//     the larger angle and sweeping 2π minus the difference.
//   - Otherwise: the wedge starts at the smaller angle and sweeps the plain
//     difference.
//
// Two unordered angles cannot describe a wedge of π or more, so [Build]
// rejects a resolved sweep of π with [ErrSpanTooWide]. Wide wedges are built
// with [BuildSpan], which takes an explicit start and sweep.
//
// # Recoloring
//
// [Recolor] rewrites only the color channels of an existing buffer so a
// re-selected clade can change color without redoing the trigonometry.
package sector
