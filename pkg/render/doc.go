// Package render provides output format conversion for rendered diagrams.
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). The conversion runs under the
// caller's context and is killed when it is cancelled.
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// The [nodelink] subpackage produces the SVG from a styled graph description.
//
// [nodelink]: github.com/matzehuels/fsdcheck/pkg/render/nodelink
package render
