package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"posecorpus/internal/align"
	"posecorpus/internal/config"
	"posecorpus/internal/dataset"
	"posecorpus/internal/framerate"
	"posecorpus/internal/logging"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/split"
	"posecorpus/internal/subtitles"
	"posecorpus/internal/textutil"
)

// ProgressFunc is told when a pose archive has been processed.
type ProgressFunc func(done, total int, videoID string)

// Options configures Run. Resolver and Provider default to the ones the
// configuration selects.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Resolver framerate.Resolver
	Provider pose.Provider
	Progress ProgressFunc
}

// Summary describes a finished run.
type Summary struct {
	RunID  string
	Videos int
	// Total is the size of the example universe.
	Total        int
	SkippedCues  int
	Produced     int
	Clamped      int
	Assigned     map[split.Subset]int
	StoppedEarly bool
	// UnpairedPoses are pose archives without subtitles.
	UnpairedPoses []string
	// UnpairedSubtitles are subtitle files without a pose archive.
	UnpairedSubtitles []string
	Files             []dataset.OutputFile
	Duration          time.Duration
}

// Written returns the number of examples written to subset.
func (s *Summary) Written(subset split.Subset) int {
	for _, f := range s.Files {
		if f.Subset == subset {
			return f.Examples
		}
	}
	return 0
}

var errStopEarly = errors.New("dry run candidate prefix exhausted")

// Run builds the corpus described by opts.Config.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "corpus", "run", "missing configuration", nil)
	}
	if err := cfg.ValidateBuild(); err != nil {
		return nil, err
	}
	started := time.Now()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.NewComponentLogger(opts.Logger, "corpus")

	poseType, err := pose.ParseType(cfg.Pose.Type)
	if err != nil {
		return nil, err
	}
	if err := poseType.CheckSupported(); err != nil {
		return nil, err
	}
	form, err := textutil.ParseUnicodeForm(cfg.Text.UnicodeForm)
	if err != nil {
		return nil, err
	}
	scope, err := pose.ParseScope(cfg.Pose.NormalizeScope)
	if err != nil {
		return nil, err
	}

	lock, err := dataset.LockOutput(cfg.Paths.OutputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	layout := Layout{Root: cfg.Paths.InputDir, PoseType: poseType, IDPosition: cfg.Layout.IDPosition}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolver(cfg, layout, opts.Logger)
	}
	provider := opts.Provider
	if provider == nil {
		if provider, err = pose.NewProvider(poseType, opts.Logger); err != nil {
			return nil, err
		}
	}
	target := cfg.FrameRate.TargetFPS

	logging.WithContext(ctx, logger).Info("corpus build started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input_dir", layout.Root),
		logging.String("output_dir", cfg.Paths.OutputDir),
		logging.String("pose_type", string(poseType)),
		logging.Int("target_fps", target),
		logging.Bool("dry_run", cfg.Split.DryRun),
	)

	// Subtitles.
	subCtx := services.WithStage(ctx, "subtitles")
	archives, err := layout.PoseArchives()
	if err != nil {
		return nil, err
	}
	poseIDs := IDSet(archives)
	loader := subtitles.Loader{
		IDPosition: layout.IDPosition,
		Form:       form,
		Include:    func(id string) bool { return poseIDs[id] },
		Logger:     opts.Logger,
	}
	index, err := loader.LoadDirectory(subCtx, layout.SubtitlesDir(), framerate.GoverningFunc(resolver, target))
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:             runID,
		Total:             index.Total(),
		SkippedCues:       index.Skipped,
		UnpairedSubtitles: index.Excluded,
	}
	for _, a := range archives {
		if _, ok := index.Cues(a.ID); !ok {
			summary.UnpairedPoses = append(summary.UnpairedPoses, a.Name)
		}
	}
	warnUnpaired(logging.WithContext(subCtx, logger), summary)

	// Split.
	splitCtx := services.WithStage(ctx, "split")
	params := split.Params{
		Total:       index.Total(),
		TrainSize:   cfg.Split.TrainSize,
		DevTestSize: *cfg.Split.DevTestSize,
		DryRun:      cfg.Split.DryRun,
	}
	assignment, err := split.Assign(params, split.NewRand(*cfg.Split.Seed))
	if err != nil {
		return nil, err
	}
	summary.Assigned = assignment.Counts()
	logging.WithContext(splitCtx, logger).Info("split assigned",
		logging.Int("examples", params.Total),
		logging.Int("train", summary.Assigned[split.Train]),
		logging.Int("dev", summary.Assigned[split.Dev]),
		logging.Int("test", summary.Assigned[split.Test]),
		logging.Int("excluded", summary.Assigned[split.Excluded]),
	)

	caps := map[split.Subset]int{split.Dev: params.DevTestSize, split.Test: params.DevTestSize}
	if params.TrainSize != nil {
		caps[split.Train] = *params.TrainSize
	}
	writers, err := dataset.OpenWriters(ctx, dataset.WriterConfig{
		Dir:      cfg.Paths.OutputDir,
		Prefix:   cfg.Output.Prefix,
		PoseType: poseType,
		Caps:     caps,
	})
	if err != nil {
		return nil, err
	}

	s := &stream{
		cfg:        cfg,
		logger:     logger,
		resolver:   resolver,
		provider:   provider,
		normalizer: pose.Normalizer{Scope: scope, Logger: opts.Logger},
		engine:     align.Engine{Person: cfg.Pose.Person, Logger: opts.Logger},
		assignment: assignment,
		prefix:     assignment.ContiguousPrefix(),
		writers:    writers,
		summary:    summary,
		target:     target,
	}
	runErr := s.run(ctx, archives, index, opts.Progress)
	closeErr := writers.Close(ctx)
	summary.Files = writers.Files()
	summary.Duration = time.Since(started)
	if runErr != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, logger), "corpus build failed", "run_failed",
			logging.Error(runErr),
			logging.String("error_kind", services.KindOf(runErr).String()),
			logging.Int("produced", summary.Produced),
		)
		return summary, runErr
	}
	if closeErr != nil {
		return summary, closeErr
	}

	logging.WithContext(ctx, logger).Info("corpus build finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("videos", summary.Videos),
		logging.Int("produced", summary.Produced),
		logging.Int("train", summary.Written(split.Train)),
		logging.Int("dev", summary.Written(split.Dev)),
		logging.Int("test", summary.Written(split.Test)),
		logging.Bool("stopped_early", summary.StoppedEarly),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

type stream struct {
	cfg        *config.Config
	logger     *slog.Logger
	resolver   framerate.Resolver
	provider   pose.Provider
	normalizer pose.Normalizer
	engine     align.Engine
	assignment split.Assignment
	prefix     int
	writers    *dataset.Writers
	summary    *Summary
	target     int
	next       int
}

func (s *stream) run(ctx context.Context, archives []Entry, index *subtitles.Index, progress ProgressFunc) error {
	for i, archive := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		cues, ok := index.Cues(archive.ID)
		if ok {
			err := s.video(ctx, archive, cues)
			if errors.Is(err, errStopEarly) {
				s.summary.StoppedEarly = true
				logging.WithContext(ctx, s.logger).Info("dry run stopped after candidate prefix",
					logging.String(logging.FieldVideoID, archive.ID),
					logging.Int("examples", s.next),
				)
				return nil
			}
			if err != nil {
				return err
			}
			s.summary.Videos++
		}
		if progress != nil {
			progress(i+1, len(archives), archive.ID)
		}
	}
	return nil
}

func (s *stream) video(ctx context.Context, archive Entry, cues []subtitles.Cue) error {
	ctx = services.WithVideoID(services.WithStage(ctx, "poses"), archive.ID)
	logger := logging.WithContext(ctx, s.logger)

	native, err := s.resolver.NativeFPS(ctx, archive.ID)
	if err != nil {
		return err
	}
	seq, err := s.provider.Load(ctx, archive.Path, native)
	if err != nil {
		return err
	}
	if seq, err = framerate.Convert(seq, s.target); err != nil {
		return err
	}
	if s.cfg.Pose.Normalize {
		if seq, err = s.normalizer.Normalize(ctx, seq); err != nil {
			return err
		}
	}

	first := s.next
	stats, err := s.engine.Extract(services.WithStage(ctx, "align"), archive.ID, cues, seq, func(ex align.Example) error {
		idx := s.next
		subset := s.assignment.At(idx)
		if subset == split.Excluded {
			if s.cfg.Split.DryRun && idx >= s.prefix {
				return errStopEarly
			}
			s.next++
			return nil
		}
		if err := s.writers.Add(ctx, subset, ex.Text, ex.Features); err != nil {
			return fmt.Errorf("example %d: %w", idx, err)
		}
		s.next++
		return nil
	})
	s.summary.Produced += stats.Emitted
	s.summary.Clamped += stats.Clamped
	if err != nil {
		return err
	}
	logger.Debug("video processed",
		logging.String("archive", archive.Name),
		logging.Int("native_fps", native),
		logging.Int("fps", seq.FPS),
		logging.Int("frames", seq.Frames),
		logging.Int("first_index", first),
		logging.Int("examples", stats.Emitted),
		logging.Int("clamped", stats.Clamped),
	)
	return nil
}

func warnUnpaired(logger *slog.Logger, summary *Summary) {
	for _, name := range summary.UnpairedSubtitles {
		logging.WarnWithContext(logger, "subtitle file has no pose archive", "subtitles_unpaired",
			logging.String("file", name),
			logging.String(logging.FieldImpact, "cues are not part of the corpus"),
			logging.String(logging.FieldErrorHint, "add the matching pose archive or remove the subtitle file"),
		)
	}
	for _, name := range summary.UnpairedPoses {
		logging.WarnWithContext(logger, "pose archive has no subtitles", "poses_unpaired",
			logging.String("file", name),
			logging.String(logging.FieldImpact, "video contributes no examples"),
			logging.String(logging.FieldErrorHint, "run dummy-subtitles or add the subtitle file"),
		)
	}
}

// NewResolver returns the native frame rate source the configuration
// selects: a fixed rate when framerate.native_fps is set, else ffprobe on the
// videos folder.
func NewResolver(cfg *config.Config, layout Layout, logger *slog.Logger) framerate.Resolver {
	if cfg.FrameRate.NativeFPS > 0 {
		return framerate.FixedResolver{FPS: cfg.FrameRate.NativeFPS}
	}
	return &framerate.ProbeResolver{
		VideoDir:   layout.VideosDir(),
		Binary:     cfg.FFprobeBinary(),
		IDPosition: layout.IDPosition,
		Logger:     logger,
	}
}
