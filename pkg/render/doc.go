// Package render draws layouts for inspection.
//
// # Overview
//
// Two views are provided:
//
//   - [RenderSVG] draws the projected viewports of a tree: one rectangle per
//     area, labelled with its id and content type, with optional gesture
//     previews overlaid.
//   - [ToDOT] describes the tree structure itself (rows, areas and child
//     sizes) as a Graphviz digraph, rendered with [RenderTreeSVG].
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := render.RenderSVG(tree, vps, render.WithGap(2))
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
