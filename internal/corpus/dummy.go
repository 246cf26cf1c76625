package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"posecorpus/internal/framerate"
	"posecorpus/internal/logging"
	"posecorpus/internal/media/ffprobe"
	"posecorpus/internal/services"
	"posecorpus/internal/subtitles"
)

// DummyOptions configures WriteDummySubtitles.
type DummyOptions struct {
	Binary string
	// Overwrite replaces existing subtitle files with the same id.
	Overwrite bool
	Probe     framerate.ProbeFunc
	Logger    *slog.Logger
}

// DummyResult lists what WriteDummySubtitles did.
type DummyResult struct {
	Written []string
	Kept    []string
}

// WriteDummySubtitles writes a one-cue subtitle file spanning the whole video
// for every video without subtitles. The file is named after the video with
// its extension replaced by .srt.
func WriteDummySubtitles(ctx context.Context, layout Layout, opts DummyOptions) (DummyResult, error) {
	var result DummyResult
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "dummy-subtitles"))

	videos, err := layout.Videos()
	if err != nil {
		return result, err
	}
	if err := os.MkdirAll(layout.SubtitlesDir(), 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "dummy-subtitles", "subtitles dir", layout.SubtitlesDir(), err)
	}
	existing, err := layout.Subtitles()
	if err != nil {
		return result, err
	}
	have := make(map[string]string, len(existing))
	for _, e := range existing {
		have[e.ID] = e.Path
	}

	probe := opts.Probe
	if probe == nil {
		probe = ffprobe.Inspect
	}
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		target := filepath.Join(layout.SubtitlesDir(), strings.TrimSuffix(video.Name, filepath.Ext(video.Name))+".srt")
		if path, ok := have[video.ID]; ok {
			if !opts.Overwrite {
				result.Kept = append(result.Kept, path)
				continue
			}
			if path != target {
				if err := os.Remove(path); err != nil {
					return result, services.Wrap(services.ErrConfiguration, "dummy-subtitles", "replace", path, err)
				}
			}
		}

		probed, err := probe(ctx, opts.Binary, video.Path)
		if err != nil {
			return result, services.Wrap(services.ErrExternalTool, "dummy-subtitles", "probe", video.Path, err)
		}
		duration := probed.VideoDuration()
		if duration <= 0 {
			return result, services.Wrap(services.ErrDataCorruption, "dummy-subtitles", "probe",
				fmt.Sprintf("%s reports no duration", video.Name), nil)
		}
		if err := subtitles.WriteDummy(target, duration); err != nil {
			return result, services.Wrap(services.ErrConfiguration, "dummy-subtitles", "write", target, err)
		}
		result.Written = append(result.Written, target)
		logger.Info("dummy subtitles written",
			logging.String(logging.FieldVideoID, video.ID),
			logging.String("file", filepath.Base(target)),
			logging.Duration("duration", duration),
		)
	}
	return result, nil
}
