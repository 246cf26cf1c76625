package align

import (
	"context"
	"fmt"
	"log/slog"

	"posecorpus/internal/logging"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/subtitles"
)

// Example is one (text, features) pair.
type Example struct {
	Text     string
	Features pose.Features
}

// EmitFunc receives examples in cue order. A non-nil error stops extraction.
type EmitFunc func(Example) error

// Stats counts what Extract did for one video.
type Stats struct {
	Emitted int
	Clamped int
}

// Engine slices pose sequences by cue time ranges.
type Engine struct {
	// Person is the tracked person kept in every frame.
	Person int
	Logger *slog.Logger
}

// Extract emits one example per cue. cues must already be normalized and
// filtered for the sequence's rate.
func (e Engine) Extract(ctx context.Context, videoID string, cues []subtitles.Cue, seq *pose.Sequence, emit EmitFunc) (Stats, error) {
	var stats Stats
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.Logger, "align"))

	if seq == nil || seq.Frames == 0 {
		return stats, services.Wrap(services.ErrDataCorruption, "align", "sequence",
			fmt.Sprintf("pose sequence for %q has no frames", videoID), nil)
	}
	if e.Person < 0 || e.Person >= seq.Persons {
		return stats, services.Wrap(services.ErrDataCorruption, "align", "person",
			fmt.Sprintf("pose sequence for %q has %d persons, need person %d", videoID, seq.Persons, e.Person), nil)
	}

	total := seq.Frames
	for _, cue := range cues {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		start := cue.StartFrame(seq.FPS)
		end := cue.EndFrame(seq.FPS)

		if start >= total {
			logging.ErrorWithContext(logger, "cue starts after the last pose frame", "cue_out_of_range",
				logging.String(logging.FieldVideoID, videoID),
				logging.Int("cue", cue.Index),
				logging.String("text", cue.Text),
				logging.Int("start_frame", start),
				logging.Int("end_frame", end),
				logging.Int("frames", total),
				logging.Int("fps", seq.FPS),
				logging.String(logging.FieldErrorHint, "check that subtitles and poses belong to the same video and fps"),
			)
			return stats, services.Wrap(services.ErrDataCorruption, "align", "slice",
				fmt.Sprintf("video %q cue %d starts at frame %d but the sequence has %d frames", videoID, cue.Index, start, total), nil)
		}
		if end > total {
			logging.WarnWithContext(logger, "cue end clamped to sequence length", "cue_clamped",
				logging.String(logging.FieldVideoID, videoID),
				logging.Int("cue", cue.Index),
				logging.Int("end_frame", end),
				logging.Int("frames", total),
				logging.String(logging.FieldImpact, "example is shorter than its cue"),
				logging.String(logging.FieldErrorHint, "subtitle timing overruns the decoded video"),
			)
			end = total
			stats.Clamped++
		}

		features, err := seq.Features(e.Person, start, end)
		if err != nil {
			return stats, services.Wrap(services.ErrDataCorruption, "align", "slice", videoID, err)
		}
		if err := emit(Example{Text: cue.Text, Features: features}); err != nil {
			return stats, err
		}
		stats.Emitted++
	}
	return stats, nil
}
