package cli

import (
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
)

func (c *CLI) browseCommand() *cobra.Command {
	var policy policyFlags

	cmd := &cobra.Command{
		Use:   "browse <graph.json|->",
		Short: "Explore violations interactively",
		Long: `Check a dependency graph and open an interactive list of the violations.

Select a violation to see the offending dependency, the cycle it belongs to
and the explanation attached to the rule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			cfg, err := c.loadPolicy(cmd, &policy)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(policy.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			g, err := importGraph(ctx, runner, args[0], cmd.InOrStdin(), cfg)
			if err != nil {
				return err
			}
			result, err := runner.Check(ctx, g, cfg, pipeline.Options{Source: args[0]})
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewViolationListModel(result.Report),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				if stderrors.Is(err, tea.ErrProgramKilled) {
					return ctx.Err()
				}
				return errors.Wrap(errors.ErrCodeInternal, err, "run browser")
			}
			return result.Report.Err()
		},
	}

	policy.register(cmd)
	return cmd
}
