package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
	"github.com/matzehuels/fsdcheck/pkg/report"
)

// Report output styles for the check command.
const (
	outputTable = "table"
	outputText  = "text"
	outputJSON  = "json"
)

// checkOpts holds the flags of the check command.
type checkOpts struct {
	policy      policyFlags
	output      string
	reportFile  string
	maxWarnings int
	refresh     bool
}

func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check <graph.json|->",
		Short: "Check a dependency graph against the policy",
		Long: `Check a module dependency graph against the policy and report violations.

The graph is a native fsdcheck document or dependency-cruiser JSON output.
Use "-" to read it from standard input.

The command exits with status 1 when error-severity violations exist and
with status 2 when the policy or the graph document is invalid.`,
		Example: `  # Check with the policy in the working directory
  fsdcheck check deps.json

  # Pipe dependency-cruiser output and print JSON
  depcruise src -T json | fsdcheck check - --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args[0], opts)
		},
	}

	opts.policy.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "report style: table, text or json")
	cmd.Flags().StringVar(&opts.reportFile, "report-file", "", "also write the JSON report to this file")
	cmd.Flags().IntVar(&opts.maxWarnings, "max-warnings", -1, "fail when more warnings are found (-1 = unlimited)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, path string, opts checkOpts) error {
	switch opts.output {
	case outputTable, outputText, outputJSON:
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid output %q (must be table, text or json)", opts.output)
	}

	ctx := commandContext(cmd)

	cfg, err := c.loadPolicy(cmd, &opts.policy)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.policy.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	g, err := importGraph(ctx, runner, path, cmd.InOrStdin(), cfg)
	if err != nil {
		return err
	}

	result, err := runner.Check(ctx, g, cfg, pipeline.Options{Source: path, Refresh: opts.refresh})
	if err != nil {
		return err
	}
	rep := result.Report
	prog.done("Checked " + rep.SummaryLine())

	if opts.reportFile != "" {
		if err := writeReportFile(opts.reportFile, rep); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case outputJSON:
		if err := report.WriteJSON(out, rep); err != nil {
			return err
		}
	case outputText:
		if err := report.WriteText(out, rep); err != nil {
			return err
		}
	default:
		printReport(out, rep)
	}

	if err := rep.Err(); err != nil {
		return err
	}
	if opts.maxWarnings >= 0 && rep.Summary.Warnings > opts.maxWarnings {
		return errors.New(errors.ErrCodePolicyFailure, "%d warnings exceed the limit of %d", rep.Summary.Warnings, opts.maxWarnings)
	}
	return nil
}

func writeReportFile(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create report file %s", path)
	}
	if err := report.WriteJSON(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
