package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	policy          policyFlags
	formats         string
	output          string
	collapseMode    string
	collapsePattern string
	depth           int
	clusters        bool
	scale           float64
	title           string
	refresh         bool
	failOnViolation bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json|->",
		Short: "Render the dependency graph with violations highlighted",
		Long: `Render the module dependency graph after checking it against the policy.

Modules are grouped according to the collapse settings (slices by default)
and dependencies that break a rule are drawn in the invalid style.

Output files are named <output>.<format>.`,
		Example: `  # SVG and interactive HTML grouped by slice
  fsdcheck render deps.json -f svg,html

  # Group by the first three path segments, one box per layer
  fsdcheck render deps.json --collapse depth --depth 3 --clusters -f png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.policy.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&opts.formats, "format", "f", pipeline.FormatSVG, "output formats: "+strings.Join(pipeline.FormatNames(), ", "))
	fl.StringVarP(&opts.output, "output", "o", pipeline.DefaultOutput, "output path without extension")
	fl.StringVar(&opts.collapseMode, "collapse", "", "collapse mode: none, pattern or depth (default from policy)")
	fl.StringVar(&opts.collapsePattern, "collapse-pattern", "", "grouping expression for --collapse pattern")
	fl.IntVar(&opts.depth, "depth", 0, "path segments kept for --collapse depth")
	fl.BoolVar(&opts.clusters, "clusters", false, "draw one box per layer")
	fl.Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	fl.StringVar(&opts.title, "title", pipeline.DefaultTitle, "HTML page title")
	fl.BoolVar(&opts.refresh, "refresh", false, "ignore cached reports and artifacts")
	fl.BoolVar(&opts.failOnViolation, "fail", false, "exit non-zero when the check fails")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	formats, err := pipeline.ParseFormats(opts.formats)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}

	cfg, err := c.loadPolicy(cmd, &opts.policy)
	if err != nil {
		return err
	}
	spec, err := collapseOverride(cmd, cfg.CollapseSpec(), opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.policy.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx := commandContext(cmd)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Importing "+path+"...")
	spinner.Start()
	defer spinner.Stop()

	g, err := importGraph(ctx, runner, path, cmd.InOrStdin(), cfg)
	if err != nil {
		return err
	}

	spinner.Update("Rendering " + strings.Join(formats, ", ") + "...")
	result, err := runner.Check(ctx, g, cfg, pipeline.Options{
		Source:   path,
		Formats:  formats,
		Collapse: spec,
		Clusters: opts.clusters,
		Scale:    opts.scale,
		Title:    opts.title,
		Refresh:  opts.refresh,
	})
	if err != nil {
		return err
	}
	spinner.Stop()

	out := cmd.OutOrStdout()
	if result.Report.Passed {
		printSuccess(out, "%s", result.Report.SummaryLine())
	} else {
		printWarning(out, "%s", result.Report.SummaryLine())
	}
	printStats(out, result.Stats.NodeCount, len(result.View.Edges), result.CacheInfo.RenderHit)

	paths, err := writeArtifacts(opts.output, formats, result.Artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(out, p)
	}

	if opts.failOnViolation {
		return result.Report.Err()
	}
	return nil
}

// collapseOverride applies the collapse flags on top of the policy settings.
// It returns nil when no collapse flag was given.
func collapseOverride(cmd *cobra.Command, base collapse.Spec, opts renderOpts) (*collapse.Spec, error) {
	fl := cmd.Flags()
	if !fl.Changed("collapse") && !fl.Changed("collapse-pattern") && !fl.Changed("depth") {
		return nil, nil
	}
	spec := base
	if fl.Changed("collapse") {
		mode, err := collapse.ParseMode(opts.collapseMode)
		if err != nil {
			return nil, err
		}
		spec.Mode = mode
	}
	if fl.Changed("collapse-pattern") {
		spec.Pattern = opts.collapsePattern
		if !fl.Changed("collapse") {
			spec.Mode = collapse.ModePattern
		}
	}
	if fl.Changed("depth") {
		spec.Depth = opts.depth
		if !fl.Changed("collapse") {
			spec.Mode = collapse.ModeDepth
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// writeArtifacts writes one file per format and returns the paths written.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", dir)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := artifactPath(base, f)
		if err := os.WriteFile(p, artifacts[f], 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// artifactPath appends the format extension unless base already carries it.
func artifactPath(base, format string) string {
	if strings.EqualFold(filepath.Ext(base), "."+format) {
		return base
	}
	return base + "." + format
}
