package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"posecorpus/internal/dataset"
)

func newSizeCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "size <container.db>...",
		Short:       "Print the number of examples in feature containers",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sizes := make([]containerJSON, 0, len(args))
			for _, path := range args {
				c, err := dataset.Open(ctx, path)
				if err != nil {
					return err
				}
				n, err := c.Count(ctx)
				width := c.Width()
				poseType := c.PoseType()
				if cerr := c.Close(ctx); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				sizes = append(sizes, containerJSON{Path: path, PoseType: string(poseType), Width: width, Examples: n})
			}

			if jsonOutput {
				return writeJSON(cmd, sizes)
			}
			if len(sizes) == 1 {
				fmt.Fprintln(cmd.OutOrStdout(), sizes[0].Examples)
				return nil
			}
			rows := make([][]string, 0, len(sizes))
			for _, s := range sizes {
				rows = append(rows, []string{s.Path, s.PoseType, strconv.Itoa(s.Width), strconv.Itoa(s.Examples)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Container", "Pose", "Width", "Examples"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print sizes as JSON")
	return cmd
}

type containerJSON struct {
	Path     string `json:"path"`
	PoseType string `json:"pose_type"`
	Width    int    `json:"width"`
	Examples int    `json:"examples"`
}
