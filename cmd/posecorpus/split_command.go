package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"posecorpus/internal/services"
	"posecorpus/internal/split"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var flags configFlags
	var total int
	var jsonOutput bool
	var withIndices bool

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Preview the train, dev and test assignment for a number of examples",
		Long: "Compute the split a build would use for --total examples with the configured seed and sizes.\n" +
			"No input files are read.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			if cfg.Split.Seed == nil {
				return services.Wrap(services.ErrConfiguration, "split", "seed", "split.seed is required (pass --seed)", nil)
			}
			if cfg.Split.DevTestSize == nil {
				return services.Wrap(services.ErrConfiguration, "split", "devtest size", "split.devtest_size is required (pass --devtest-size)", nil)
			}

			assignment, err := split.Assign(split.Params{
				Total:       total,
				TrainSize:   cfg.Split.TrainSize,
				DevTestSize: *cfg.Split.DevTestSize,
				DryRun:      cfg.Split.DryRun,
			}, split.NewRand(*cfg.Split.Seed))
			if err != nil {
				return err
			}

			counts := assignment.Counts()
			if jsonOutput {
				payload := splitJSON{
					Total:  total,
					Seed:   *cfg.Split.Seed,
					DryRun: cfg.Split.DryRun,
					Counts: make(map[string]int, len(counts)),
				}
				for subset, n := range counts {
					payload.Counts[subset.String()] = n
				}
				if withIndices {
					payload.Indices = make(map[string][]int, len(split.Subsets))
					for _, subset := range split.Subsets {
						payload.Indices[subset.String()] = nonNilInts(assignment.Indices(subset))
					}
				}
				if cfg.Split.DryRun {
					prefix := assignment.ContiguousPrefix()
					payload.Prefix = &prefix
				}
				return writeJSON(cmd, payload)
			}

			order := append(append([]split.Subset(nil), split.Subsets...), split.Excluded)
			rows := make([][]string, 0, len(order))
			for _, subset := range order {
				rows = append(rows, []string{subset.String(), strconv.Itoa(counts[subset])})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Subset", "Examples"}, rows, []columnAlignment{alignLeft, alignRight}))
			if cfg.Split.DryRun {
				fmt.Fprintf(out, "Dry run: a build stops after example %d\n", assignment.ContiguousPrefix())
			}
			return nil
		},
	}

	flags.bindSplit(cmd.Flags())
	cmd.Flags().IntVarP(&total, "total", "n", 0, "Number of examples in the corpus")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print counts as JSON")
	cmd.Flags().BoolVar(&withIndices, "indices", false, "Include the example indices of each subset in JSON output")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

type splitJSON struct {
	Total   int              `json:"total"`
	Seed    int64            `json:"seed"`
	DryRun  bool             `json:"dry_run"`
	Prefix  *int             `json:"prefix,omitempty"`
	Counts  map[string]int   `json:"counts"`
	Indices map[string][]int `json:"indices,omitempty"`
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
