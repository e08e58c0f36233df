package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/jaskledger/internal/config"
)

// NewConfigCommand groups config subcommands.
func NewConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write configuration",
	}
	cmd.AddCommand(newConfigInitCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), opts.Config)
		},
	})
	return cmd
}

func newConfigInitCommand(opts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigFile
			if path == "" {
				path = config.Path()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists; use --force to overwrite", path))
			}
			if err := config.Save(opts.Config, path); err != nil {
				return WrapExitError(ExitCommandError, "write config", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
