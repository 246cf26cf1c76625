package preflight

import (
	"context"
	"fmt"
	"strings"

	"posecorpus/internal/config"
	"posecorpus/internal/corpus"
	"posecorpus/internal/deps"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every check that applies to the configuration, in display
// order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckPoseType(cfg.Pose.Type))

	results = append(results, CheckDirectoryReadable("Input directory", cfg.Paths.InputDir))
	if cfg.Paths.InputDir != "" {
		layout := corpus.Layout{
			Root:       cfg.Paths.InputDir,
			PoseType:   pose.Type(strings.ToLower(cfg.Pose.Type)),
			IDPosition: cfg.Layout.IDPosition,
		}
		results = append(results,
			CheckDirectoryReadable("Subtitles", layout.SubtitlesDir()),
			CheckDirectoryReadable("Poses", layout.PoseDir()),
		)
		videos := CheckDirectoryReadable("Videos", layout.VideosDir())
		videos.Optional = cfg.FrameRate.NativeFPS > 0
		results = append(results, videos)
	}

	results = append(results, CheckDirectoryCreatable("Output directory", cfg.Paths.OutputDir))
	if cfg.Paths.LogDir != "" {
		logs := CheckDirectoryCreatable("Log directory", cfg.Paths.LogDir)
		logs.Optional = true
		results = append(results, logs)
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if ctx.Err() != nil {
			break
		}
		results = append(results, CheckBinary(status))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// Require runs every check and returns a configuration error naming the
// first required failure.
func Require(ctx context.Context, cfg *config.Config) error {
	failed := Failed(RunAll(ctx, cfg))
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check",
		fmt.Sprintf("%s: %s (failed: %s)", failed[0].Name, failed[0].Detail, strings.Join(names, ", ")), nil)
}
