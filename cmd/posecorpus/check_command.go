package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"posecorpus/internal/preflight"
	"posecorpus/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check input folders, output permissions and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				switch {
				case !r.Passed && r.Optional:
					kind = statusWarn
				case !r.Passed:
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "preflight",
					fmt.Sprintf("%d required checks failed", len(failed)), nil)
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}

	flags.bindInput(cmd.Flags())
	flags.bindOutput(cmd.Flags())
	return cmd
}
