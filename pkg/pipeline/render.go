package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
	"github.com/matzehuels/fsdcheck/pkg/report"
)

// Render produces the requested formats from DOT source. The SVG is rendered
// once and shared by the formats derived from it.
func Render(ctx context.Context, r nodelink.Renderer, dot string, rep *report.Report, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = r.Render(ctx, dot)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = svgOnce()
		case FormatHTML:
			if data, err = svgOnce(); err == nil {
				data, err = nodelink.WrapHTML(data, opts.Title, subtitle(rep))
			}
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, nodelink.RendererFunc(func(context.Context, string) ([]byte, error) {
				return svgOnce()
			}), dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, nodelink.RendererFunc(func(context.Context, string) ([]byte, error) {
				return svgOnce()
			}), dot, opts.Scale)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func subtitle(rep *report.Report) string {
	if rep == nil {
		return ""
	}
	return rep.SummaryLine()
}
