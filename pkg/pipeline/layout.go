package pipeline

import (
	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/config"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
	"github.com/matzehuels/fsdcheck/pkg/theme"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Layout is the styled, collapsed view of an annotated graph together with
// its DOT source.
type Layout struct {
	View        *collapse.View
	Description *nodelink.Description
	DOT         string
}

// GenerateLayout collapses the annotated graph g, styles it with the
// configured theme and writes DOT. g must carry edge validity, i.e. come
// from rules.Result.Graph.
func GenerateLayout(g *graph.Graph, cfg *config.Config, opts Options) (Layout, error) {
	spec := cfg.CollapseSpec()
	if opts.Collapse != nil {
		spec = *opts.Collapse
	}
	view, err := collapse.Collapse(g, spec)
	if err != nil {
		return Layout{}, err
	}

	desc, err := theme.Apply(cfg.BuildTheme(), view, cfg.Layout())
	if err != nil {
		return Layout{}, err
	}

	return Layout{
		View:        view,
		Description: desc,
		DOT:         nodelink.ToDOT(desc, nodelink.Options{Clusters: opts.Clusters}),
	}, nil
}
