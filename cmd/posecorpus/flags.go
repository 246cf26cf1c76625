package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"posecorpus/internal/config"
)

// configFlags holds the command-line overrides for configuration keys. Only
// flags the user actually set are applied.
type configFlags struct {
	seed        int64
	trainSize   int
	devTestSize int
	dryRun      bool

	input     string
	outputDir string
	prefix    string

	poseType  string
	normalize bool
	targetFPS int
	nativeFPS int
}

func (f *configFlags) bindSplit(fs *pflag.FlagSet) {
	fs.Int64Var(&f.seed, "seed", 0, "Split seed (split.seed)")
	fs.IntVar(&f.trainSize, "train-size", 0, "Maximum train examples (split.train_size)")
	fs.IntVar(&f.devTestSize, "devtest-size", 0, "Dev and test examples each (split.devtest_size)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Draw the split from a prefix of the examples and stop early (split.dry_run)")
}

func (f *configFlags) bindInput(fs *pflag.FlagSet) {
	fs.StringVar(&f.input, "input", "", "Input root with videos/, subtitles/ and pose folders (paths.input_dir)")
	fs.StringVar(&f.poseType, "pose-type", "", "Pose family: openpose or mediapipe (pose.type)")
	fs.IntVar(&f.nativeFPS, "fps", 0, "Treat every video as this frame rate instead of probing (framerate.native_fps)")
}

func (f *configFlags) bindOutput(fs *pflag.FlagSet) {
	fs.StringVar(&f.outputDir, "output-dir", "", "Output folder (paths.output_dir)")
	fs.StringVar(&f.prefix, "output-prefix", "", "Output file prefix (output.prefix)")
}

func (f *configFlags) bindPose(fs *pflag.FlagSet) {
	fs.BoolVar(&f.normalize, "normalize-poses", false, "Normalize pose geometry (pose.normalize)")
	fs.IntVar(&f.targetFPS, "target-fps", 0, "Convert every video to this frame rate (framerate.target_fps)")
}

func (f *configFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	changed := func(name string) bool {
		flag := fs.Lookup(name)
		return flag != nil && flag.Changed
	}

	if changed("seed") {
		seed := f.seed
		cfg.Split.Seed = &seed
	}
	if changed("train-size") {
		size := f.trainSize
		cfg.Split.TrainSize = &size
	}
	if changed("devtest-size") {
		size := f.devTestSize
		cfg.Split.DevTestSize = &size
	}
	if changed("dry-run") {
		cfg.Split.DryRun = f.dryRun
	}
	if changed("input") {
		cfg.Paths.InputDir = f.input
	}
	if changed("output-dir") {
		cfg.Paths.OutputDir = f.outputDir
	}
	if changed("output-prefix") {
		cfg.Output.Prefix = f.prefix
	}
	if changed("pose-type") {
		cfg.Pose.Type = f.poseType
	}
	if changed("normalize-poses") {
		cfg.Pose.Normalize = f.normalize
	}
	if changed("target-fps") {
		cfg.FrameRate.TargetFPS = f.targetFPS
	}
	if changed("fps") {
		cfg.FrameRate.NativeFPS = f.nativeFPS
	}
}
