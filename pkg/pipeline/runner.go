package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fsdcheck/pkg/cache"
	"github.com/matzehuels/fsdcheck/pkg/config"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	"github.com/matzehuels/fsdcheck/pkg/observability"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
	"github.com/matzehuels/fsdcheck/pkg/report"
	"github.com/matzehuels/fsdcheck/pkg/rules"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so caching logic lives in one place.
//
// Compiled rule engines are kept per configuration hash; apart from that the
// Runner holds no results and may be shared between goroutines.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Renderer nodelink.Renderer

	// HTTPClient fetches graph documents given by URL; nil uses
	// httputil.DefaultClient.
	HTTPClient *http.Client

	engines sync.Map // config hash -> *rules.Engine
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The renderer defaults to the in-process Graphviz renderer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Renderer: nodelink.GraphvizRenderer{},
	}
}

// Check evaluates g against cfg, builds the report and renders the requested
// formats. Policy violations are reported in the result, not as an error;
// use Result.Report.Err to turn a failed check into one.
func (r *Runner) Check(ctx context.Context, g *graph.Graph, cfg *config.Config, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()

	result := &Result{Artifacts: make(map[string][]byte)}
	result.Stats.ModuleCount = g.ModuleCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 1: Evaluate
	start := time.Now()
	res, err := r.Evaluate(ctx, g, cfg)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	result.Evaluation = res
	result.Stats.EvaluateTime = time.Since(start)

	rep, hit := r.reportFor(ctx, res, g, cfg, opts)
	result.Report = rep
	result.CacheInfo.ReportHit = hit

	r.Logger.Info("evaluated rules",
		"violations", len(res.Violations),
		"errors", rep.Summary.Errors,
		"cycles", len(res.Cycles),
		"duration", result.Stats.EvaluateTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 2: Layout
	start = time.Now()
	layout, err := GenerateLayout(res.Graph, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.View = layout.View
	result.Description = layout.Description
	result.DOT = layout.DOT
	result.Stats.NodeCount = len(layout.View.Nodes)
	result.Stats.LayoutTime = time.Since(start)

	r.Logger.Debug("computed layout",
		"nodes", len(layout.View.Nodes),
		"edges", len(layout.View.Edges),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout.DOT, rep, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Evaluate runs the rules of cfg against g.
func (r *Runner) Evaluate(ctx context.Context, g *graph.Graph, cfg *config.Config) (*rules.Result, error) {
	eng, err := r.engine(cfg)
	if err != nil {
		return nil, err
	}

	hooks := observability.Check()
	hooks.OnEvaluateStart(ctx, eng.RuleSet().Len(), g.EdgeCount())
	start := time.Now()
	res, err := eng.Evaluate(g)
	violations := 0
	if res != nil {
		violations = len(res.Violations)
	}
	hooks.OnEvaluateComplete(ctx, violations, time.Since(start), err)
	return res, err
}

// engine returns the compiled engine for cfg, compiling it on first use.
func (r *Runner) engine(cfg *config.Config) (*rules.Engine, error) {
	key := cfg.Hash()
	if eng, ok := r.engines.Load(key); ok {
		return eng.(*rules.Engine), nil
	}
	eng, err := rules.NewEngine(cfg.RuleList(), rules.Options{
		Workers: cfg.Options.Workers,
		Logger:  r.Logger,
	})
	if err != nil {
		return nil, err
	}
	actual, _ := r.engines.LoadOrStore(key, eng)
	return actual.(*rules.Engine), nil
}

// reportFor returns the cached report for an identical graph and policy, or
// builds and caches a new one.
func (r *Runner) reportFor(ctx context.Context, res *rules.Result, g *graph.Graph, cfg *config.Config, opts Options) (*report.Report, bool) {
	graphHash := graph.Hash(g)
	configHash := cfg.Hash()
	key := r.Keyer.ReportKey(graphHash, configHash)
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if rep, err := report.ReadJSON(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, "report")
				return rep, true
			}
		}
		hooks.OnCacheMiss(ctx, "report")
	}

	rep := report.New(res, opts.Source, graphHash, configHash)
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, rep); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLReport); err != nil {
			r.Logger.Warn("cache report", "err", err)
		}
		_ = r.Cache.Set(ctx, r.Keyer.ReportIDKey(rep.ID), buf.Bytes(), cache.TTLReport)
		hooks.OnCacheSet(ctx, "report", buf.Len())
	}
	return rep, false
}

// CachedReport looks a report up by ID in the cache.
func (r *Runner) CachedReport(ctx context.Context, id string) (*report.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.ReportIDKey(id))
	if err != nil || !hit {
		return nil, false
	}
	rep, err := report.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return rep, true
}

// RenderWithCacheInfo renders dot in the requested formats with caching and
// returns cache hit info. The HTML artifact embeds the report summary, so
// its key includes the report ID.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, dot string, rep *report.Report, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	opts.SetDefaults()
	hooks := observability.Cache()

	viewHash := cache.Hash([]byte(dot))
	keyFor := func(format string) string {
		title := ""
		if format == FormatHTML {
			title = opts.Title + "\x00" + subtitle(rep)
		}
		return r.Keyer.ArtifactKey(viewHash, cache.ArtifactKeyOpts{
			Format: format,
			Scale:  opts.Scale,
			Title:  title,
		})
	}

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keyFor(format))
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	check := observability.Check()
	check.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, r.Renderer, dot, rep, opts)
	check.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keyFor(format), data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
