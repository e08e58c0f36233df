package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <operation> [json-args|-]",
		Short: "Run one operation",
		Long: `Run one operation and print its response envelope.

Arguments are a JSON object; pass - to read them from stdin.

Example:
  jaskledger invoke create_tag '{"name":"groceries"}'`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 2 {
				raw = args[1]
			}
			if raw == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return WrapExitError(ExitCommandError, "read arguments", err)
				}
				raw = string(b)
			}
			raw = strings.TrimSpace(raw)
			if raw != "" && !json.Valid([]byte(raw)) {
				return NewExitError(ExitCommandError, "arguments are not valid JSON")
			}

			reg, err := opts.Registry(cmd.Context())
			if err != nil {
				return err
			}
			resp := reg.Invoke(cmd.Context(), args[0], json.RawMessage(raw))

			if opts.Format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			} else if resp.OK && resp.Data != nil {
				if err := writeJSON(cmd.OutOrStdout(), resp.Data); err != nil {
					return err
				}
			} else if resp.OK {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			if !resp.OK {
				return NewExitError(ExitFailure, fmt.Sprintf("%s (%s): %s", args[0], resp.Error.Kind, resp.Error.Message))
			}
			return nil
		},
	}
}
