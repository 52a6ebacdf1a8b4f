package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/config"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
)

// policyFlags override policy options for a single run.
type policyFlags struct {
	root         string
	includeOnly  string
	preset       string
	format       string
	workers      int
	skipTypeOnly bool
	noCache      bool
}

func (f *policyFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.root, "root", graph.DefaultRoot, `directory holding the layers ("." for the top level)`)
	fl.StringVar(&f.includeOnly, "include-only", "", "only consider modules matching this expression")
	fl.StringVar(&f.preset, "preset", config.PresetFSD, `built-in rule set ("fsd" or "" for none)`)
	fl.StringVar(&f.format, "input-format", "auto", "graph document format: auto, native or depcruise")
	fl.IntVar(&f.workers, "workers", 0, "rule evaluation workers (0 = all CPUs)")
	fl.BoolVar(&f.skipTypeOnly, "skip-type-only", false, "ignore type-only imports")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the report and artifact cache")
}

// loadPolicy loads the policy file (explicit or discovered in the working
// directory) and applies the flags the user set.
func (c *CLI) loadPolicy(cmd *cobra.Command, f *policyFlags) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "get working directory")
	}
	cfg, path, err := config.LoadOrDefault(c.configPath, wd)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded policy", "path", path)
	} else {
		c.Logger.Debug("no policy file found, using defaults")
	}

	fl := cmd.Flags()
	if fl.Changed("root") || fl.Changed("preset") {
		// A pattern derived from the old root would no longer match.
		if cfg.Collapse.Pattern == collapse.FSDPattern(cfg.Options.Root) {
			cfg.Collapse.Pattern = ""
		}
	}
	if fl.Changed("root") {
		cfg.Options.Root = f.root
	}
	if fl.Changed("include-only") {
		cfg.Options.IncludeOnly = f.includeOnly
	}
	if fl.Changed("preset") {
		cfg.Options.Preset = f.preset
	}
	if fl.Changed("input-format") {
		cfg.Options.Format = f.format
	}
	if fl.Changed("workers") {
		cfg.Options.Workers = f.workers
	}
	if fl.Changed("skip-type-only") {
		cfg.Options.SkipTypeOnly = f.skipTypeOnly
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// importGraph reads the graph document named by path, or standard input
// when path is "-".
func importGraph(ctx context.Context, runner *pipeline.Runner, path string, stdin io.Reader, cfg *config.Config) (*graph.Graph, error) {
	if path != "-" {
		return runner.Import(ctx, path, cfg)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read standard input")
	}
	return runner.ImportBytes(ctx, "stdin", data, cfg)
}
