package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"posecorpus/internal/corpus"
	"posecorpus/internal/dataset"
	"posecorpus/internal/pose"
	"posecorpus/internal/preflight"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags configFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Align subtitles with poses and write the train, dev and test files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			if err := cfg.ValidateBuild(); err != nil {
				return err
			}
			poseType, err := pose.ParseType(cfg.Pose.Type)
			if err != nil {
				return err
			}
			if err := poseType.CheckSupported(); err != nil {
				return err
			}
			if err := preflight.Require(cmd.Context(), cfg); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			progress := newProgressReporter(cmd.ErrOrStderr())
			summary, err := corpus.Run(cmd.Context(), corpus.Options{
				Config:   cfg,
				Logger:   logger,
				Progress: progress.callback(),
			})
			progress.finish()
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, newSummaryJSON(summary))
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	flags.bindSplit(cmd.Flags())
	flags.bindInput(cmd.Flags())
	flags.bindOutput(cmd.Flags())
	flags.bindPose(cmd.Flags())
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, s *corpus.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderKeyValues([][2]string{
		{"Run", s.RunID},
		{"Videos", strconv.Itoa(s.Videos)},
		{"Examples", strconv.Itoa(s.Total)},
		{"Produced", strconv.Itoa(s.Produced)},
		{"Skipped cues", strconv.Itoa(s.SkippedCues)},
		{"Clamped cues", strconv.Itoa(s.Clamped)},
		{"Stopped early", yesNo(s.StoppedEarly)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	}))

	rows := make([][]string, 0, len(s.Files))
	for _, f := range s.Files {
		rows = append(rows, []string{
			f.Subset.String(),
			strconv.Itoa(f.Examples),
			formatMax(f.Max),
			filepath.Base(f.Text),
			filepath.Base(f.Features),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Subset", "Examples", "Max", "Text", "Features"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))

	if n := len(s.UnpairedPoses) + len(s.UnpairedSubtitles); n > 0 {
		fmt.Fprintf(out, "%d input files had no partner and were ignored (see log)\n", n)
	}
}

func formatMax(max int) string {
	if max == dataset.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(max)
}

type summaryFileJSON struct {
	Subset   string `json:"subset"`
	Examples int    `json:"examples"`
	Max      int    `json:"max"`
	Text     string `json:"text"`
	Features string `json:"features"`
}

type summaryJSON struct {
	RunID             string            `json:"run_id"`
	Videos            int               `json:"videos"`
	Total             int               `json:"total"`
	Produced          int               `json:"produced"`
	SkippedCues       int               `json:"skipped_cues"`
	Clamped           int               `json:"clamped"`
	Assigned          map[string]int    `json:"assigned"`
	StoppedEarly      bool              `json:"stopped_early"`
	UnpairedPoses     []string          `json:"unpaired_poses,omitempty"`
	UnpairedSubtitles []string          `json:"unpaired_subtitles,omitempty"`
	Files             []summaryFileJSON `json:"files"`
	DurationMillis    int64             `json:"duration_ms"`
}

func newSummaryJSON(s *corpus.Summary) summaryJSON {
	out := summaryJSON{
		RunID:             s.RunID,
		Videos:            s.Videos,
		Total:             s.Total,
		Produced:          s.Produced,
		SkippedCues:       s.SkippedCues,
		Clamped:           s.Clamped,
		Assigned:          make(map[string]int, len(s.Assigned)),
		StoppedEarly:      s.StoppedEarly,
		UnpairedPoses:     s.UnpairedPoses,
		UnpairedSubtitles: s.UnpairedSubtitles,
		Files:             make([]summaryFileJSON, 0, len(s.Files)),
		DurationMillis:    s.Duration.Milliseconds(),
	}
	for subset, n := range s.Assigned {
		out.Assigned[subset.String()] = n
	}
	for _, f := range s.Files {
		out.Files = append(out.Files, summaryFileJSON{
			Subset:   f.Subset.String(),
			Examples: f.Examples,
			Max:      f.Max,
			Text:     f.Text,
			Features: f.Features,
		})
	}
	return out
}

