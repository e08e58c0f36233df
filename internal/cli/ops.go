package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/jaskledger/internal/commands"
)

// NewOpsCommand lists the operation catalogue. It does not touch the database.
func NewOpsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops [filter]",
		Short: "List the operations accepted by invoke",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			infos := commands.New(commands.Deps{}).Search(query)
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			for _, c := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s  %-25s  %s\n", c.Scope, c.ID, c.Description)
			}
			return nil
		},
	}
}
