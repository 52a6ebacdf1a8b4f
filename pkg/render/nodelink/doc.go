// Package nodelink renders styled dependency graphs as node-link diagrams.
//
// # Overview
//
// The theming engine produces a [Description]: nodes and edges with their
// Graphviz attributes plus graph-wide defaults. This package turns it into
// DOT source and, through a [Renderer], into SVG:
//
//	dot := nodelink.ToDOT(desc, nodelink.Options{Clusters: true})
//	svg, err := nodelink.GraphvizRenderer{}.Render(ctx, dot)
//
// For PDF or PNG output, use the conversion helpers:
//
//	pdf, err := nodelink.RenderPDF(ctx, nodelink.GraphvizRenderer{}, dot)
//	png, err := nodelink.RenderPNG(ctx, nodelink.GraphvizRenderer{}, dot, 2.0)
//
// [WrapHTML] embeds the SVG in a standalone page.
//
// # DOT Format
//
// [ToDOT] writes attributes in key order and nodes and edges in the order of
// the description, so its output is byte-for-byte reproducible. With
// [Options].Clusters, nodes sharing a Group are drawn inside one cluster.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
