package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"posecorpus/internal/dataset"
	"posecorpus/internal/services"
)

func newCombineCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:         "combine --output <out.db> <in.db>...",
		Short:       "Concatenate feature containers in argument order",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				return services.Wrap(services.ErrConfiguration, "combine", "output", "--output is required", nil)
			}
			result, err := dataset.Combine(cmd.Context(), output, args)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(result.Inputs))
			for _, in := range result.Inputs {
				rows = append(rows, []string{in.Path, strconv.Itoa(in.Examples)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Input", "Examples"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "Wrote %d examples to %s\n", result.Examples, result.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Container to create")
	return cmd
}
