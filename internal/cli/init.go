package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsdcheck/pkg/config"
	"github.com/matzehuels/fsdcheck/pkg/errors"
)

// defaultPolicyFile is the file written by init.
var defaultPolicyFile = config.DefaultFileNames[0]

func (c *CLI) initCommand() *cobra.Command {
	var (
		output string
		root   string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter policy file",
		Long: `Write a policy file with the Feature-Sliced Design preset, collapse
settings and an empty list of custom rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", output)
			}

			cfg := config.Default()
			if root != cfg.Options.Root {
				cfg.Options.Root = root
				cfg.Collapse.Pattern = ""
				cfg.SetDefaults()
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
			}
			if err := config.WriteTOML(f, cfg); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Wrote policy")
			printFile(out, output)
			printNextStep(out, "Check your graph", "fsdcheck check deps.json")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultPolicyFile, "policy file to write")
	cmd.Flags().StringVar(&root, "root", config.Default().Options.Root, "directory holding the layers")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
