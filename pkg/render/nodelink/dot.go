package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fsdcheck/pkg/render"
)

// Attrs is a set of Graphviz attributes.
type Attrs map[string]string

// Node is a styled diagram node.
type Node struct {
	ID string

	// Label is the displayed text; empty means ID.
	Label string

	// Group places the node in a cluster when clustering is enabled.
	Group string

	Attrs Attrs
}

// Edge is a styled diagram edge.
type Edge struct {
	From  string
	To    string
	Attrs Attrs
}

// Description is a fully styled node-link diagram, independent of any layout
// engine. Graph, Node and Edge hold the graph-level and default attributes.
type Description struct {
	Graph Attrs
	Node  Attrs
	Edge  Attrs
	Nodes []Node
	Edges []Edge
}

// Options configures DOT generation.
type Options struct {
	// Clusters draws a box around the nodes of each group.
	Clusters bool
}

// ToDOT converts a description to Graphviz DOT source. Attribute lists are
// written in key order, so equal descriptions produce identical output.
func ToDOT(d *Description, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	writeDefaults(&buf, "graph", d.Graph)
	writeDefaults(&buf, "node", d.Node)
	writeDefaults(&buf, "edge", d.Edge)
	buf.WriteString("\n")

	if opts.Clusters {
		writeClustered(&buf, d.Nodes)
	} else {
		for _, n := range d.Nodes {
			writeNode(&buf, "  ", n)
		}
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if len(e.Attrs) == 0 {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quoteDOT(e.From), quoteDOT(e.To))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quoteDOT(e.From), quoteDOT(e.To), fmtAttrs(e.Attrs))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDefaults(buf *bytes.Buffer, kind string, attrs Attrs) {
	if len(attrs) == 0 {
		return
	}
	fmt.Fprintf(buf, "  %s [%s];\n", kind, fmtAttrs(attrs))
}

func writeNode(buf *bytes.Buffer, indent string, n Node) {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	attrs := maps.Clone(n.Attrs)
	if attrs == nil {
		attrs = Attrs{}
	}
	if _, ok := attrs["label"]; !ok {
		attrs["label"] = label
	}
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, quoteDOT(n.ID), fmtAttrs(attrs))
}

// writeClustered emits one cluster subgraph per non-empty group, in group
// order, followed by the ungrouped nodes.
func writeClustered(buf *bytes.Buffer, nodes []Node) {
	byGroup := make(map[string][]Node)
	for _, n := range nodes {
		byGroup[n.Group] = append(byGroup[n.Group], n)
	}
	groups := slices.Sorted(maps.Keys(byGroup))
	for _, grp := range groups {
		if grp == "" {
			continue
		}
		fmt.Fprintf(buf, "  subgraph %s {\n", quoteDOT("cluster_"+grp))
		fmt.Fprintf(buf, "    label=%s;\n", quoteDOT(grp))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, n := range byGroup[grp] {
			writeNode(buf, "    ", n)
		}
		buf.WriteString("  }\n")
	}
	for _, n := range byGroup[""] {
		writeNode(buf, "  ", n)
	}
}

func fmtAttrs(attrs Attrs) string {
	keys := slices.Sorted(maps.Keys(attrs))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quoteDOT(attrs[k])
	}
	return strings.Join(parts, ", ")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteDOT returns s as a double-quoted DOT string. Only quotes and
// backslashes are escaped; other bytes, newlines included, are legal inside
// DOT strings and pass through unchanged.
func quoteDOT(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// =============================================================================
// Rendering
// =============================================================================

// Renderer turns DOT source into SVG. The layout engine is an external
// collaborator; tests and servers can substitute their own implementation.
type Renderer interface {
	Render(ctx context.Context, dot string) ([]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, dot string) ([]byte, error)

// Render calls f(ctx, dot).
func (f RendererFunc) Render(ctx context.Context, dot string) ([]byte, error) { return f(ctx, dot) }

// GraphvizRenderer renders DOT in process with the Graphviz WebAssembly build.
type GraphvizRenderer struct{}

// Render implements Renderer.
func (GraphvizRenderer) Render(ctx context.Context, dot string) ([]byte, error) {
	return RenderSVG(ctx, dot)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, r Renderer, dot string) ([]byte, error) {
	svg, err := r.Render(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, r Renderer, dot string, scale float64) ([]byte, error) {
	svg, err := r.Render(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
