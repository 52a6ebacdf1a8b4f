package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/fsdcheck/pkg/config"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	"github.com/matzehuels/fsdcheck/pkg/httputil"
	graphio "github.com/matzehuels/fsdcheck/pkg/io"
	"github.com/matzehuels/fsdcheck/pkg/observability"
)

// Import reads the graph document at path using the import settings of cfg.
// An http or https URL is downloaded first.
func (r *Runner) Import(ctx context.Context, path string, cfg *config.Config) (*graph.Graph, error) {
	if httputil.IsURL(path) {
		return r.importWith(ctx, path, func() (*graph.Graph, error) {
			data, err := httputil.Fetch(ctx, r.HTTPClient, path)
			if err != nil {
				return nil, err
			}
			return graphio.Read(bytes.NewReader(data), cfg.ImportOptions())
		})
	}
	return r.importWith(ctx, path, func() (*graph.Graph, error) {
		return graphio.ImportFile(path, cfg.ImportOptions())
	})
}

// ImportBytes reads a graph document from memory. source labels it in logs.
func (r *Runner) ImportBytes(ctx context.Context, source string, data []byte, cfg *config.Config) (*graph.Graph, error) {
	return r.importWith(ctx, source, func() (*graph.Graph, error) {
		return graphio.Read(bytes.NewReader(data), cfg.ImportOptions())
	})
}

func (r *Runner) importWith(ctx context.Context, source string, read func() (*graph.Graph, error)) (*graph.Graph, error) {
	hooks := observability.Check()
	hooks.OnImportStart(ctx, source)
	start := time.Now()

	g, err := read()
	if err != nil {
		hooks.OnImportComplete(ctx, source, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnImportComplete(ctx, source, g.ModuleCount(), g.EdgeCount(), time.Since(start), nil)

	r.Logger.Info("imported graph",
		"source", source,
		"modules", g.ModuleCount(),
		"edges", g.EdgeCount())
	return g, nil
}
