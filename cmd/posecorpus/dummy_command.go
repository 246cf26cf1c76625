package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"posecorpus/internal/corpus"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

func newDummySubtitlesCommand(ctx *commandContext) *cobra.Command {
	var flags configFlags
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "dummy-subtitles",
		Short: "Write a single-cue subtitle file for every video without subtitles",
		Long: "For every video in <input>/videos without a subtitle file, write one spanning the whole video\n" +
			"with the text \"Dummy string\". The video length is read with ffprobe.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			if cfg.Paths.InputDir == "" {
				return services.Wrap(services.ErrConfiguration, "dummy-subtitles", "input", "paths.input_dir is required (pass --input)", nil)
			}
			poseType, err := pose.ParseType(cfg.Pose.Type)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			layout := corpus.Layout{Root: cfg.Paths.InputDir, PoseType: poseType, IDPosition: cfg.Layout.IDPosition}
			result, err := corpus.WriteDummySubtitles(cmd.Context(), layout, corpus.DummyOptions{
				Binary:    cfg.FFprobeBinary(),
				Overwrite: overwrite,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d dummy subtitle files (%d videos already had subtitles)\n",
				len(result.Written), len(result.Kept))
			return nil
		},
	}

	flags.bindInput(cmd.Flags())
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing subtitle files")
	return cmd
}
