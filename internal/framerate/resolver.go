package framerate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	"posecorpus/internal/fileutil"
	"posecorpus/internal/logging"
	"posecorpus/internal/media/ffprobe"
	"posecorpus/internal/services"
	"posecorpus/internal/textutil"
)

// Resolver returns the native frame rate of a video.
type Resolver interface {
	NativeFPS(ctx context.Context, videoID string) (int, error)
}

// FixedResolver reports the same rate for every video.
type FixedResolver struct {
	FPS int
}

// NativeFPS implements Resolver.
func (r FixedResolver) NativeFPS(context.Context, string) (int, error) {
	if r.FPS <= 0 {
		return 0, services.Wrap(services.ErrConfiguration, "framerate", "fixed", fmt.Sprintf("invalid frame rate %d", r.FPS), nil)
	}
	return r.FPS, nil
}

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// ProbeResolver probes the matching file in a videos directory with ffprobe.
// Results are cached per video id.
type ProbeResolver struct {
	VideoDir   string
	Binary     string
	IDPosition int
	Logger     *slog.Logger
	Probe      ProbeFunc

	once    sync.Once
	listErr error
	paths   map[string]string

	mu    sync.Mutex
	cache map[string]int
}

func (r *ProbeResolver) index() error {
	r.once.Do(func() {
		names, err := fileutil.ListFiles(r.VideoDir)
		if err != nil {
			r.listErr = services.Wrap(services.ErrConfiguration, "framerate", "list videos", r.VideoDir, err)
			return
		}
		r.paths = make(map[string]string, len(names))
		for _, name := range names {
			id, err := textutil.FileID(name, r.IDPosition)
			if err != nil {
				continue
			}
			if _, dup := r.paths[id]; !dup {
				r.paths[id] = filepath.Join(r.VideoDir, name)
			}
		}
	})
	return r.listErr
}

// NativeFPS implements Resolver. Non-integral rates are rounded to the
// nearest integer and logged.
func (r *ProbeResolver) NativeFPS(ctx context.Context, videoID string) (int, error) {
	r.mu.Lock()
	if fps, ok := r.cache[videoID]; ok {
		r.mu.Unlock()
		return fps, nil
	}
	r.mu.Unlock()

	if err := r.index(); err != nil {
		return 0, err
	}
	path, ok := r.paths[videoID]
	if !ok {
		return 0, services.Wrap(services.ErrConfiguration, "framerate", "probe",
			fmt.Sprintf("no video for id %q in %s (set framerate.native_fps to skip probing)", videoID, r.VideoDir), nil)
	}

	probe := r.Probe
	if probe == nil {
		probe = ffprobe.Inspect
	}
	result, err := probe(ctx, r.Binary, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "framerate", "probe", path, err)
	}
	rate := result.FrameRate()
	if rate <= 0 {
		return 0, services.Wrap(services.ErrDataCorruption, "framerate", "probe",
			fmt.Sprintf("%s reports no video frame rate", filepath.Base(path)), nil)
	}
	fps := int(math.Round(rate))
	if math.Abs(rate-float64(fps)) > 1e-6 {
		logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "framerate"))
		logging.WarnWithContext(logger, "non-integral frame rate rounded", "fps_rounded",
			logging.String(logging.FieldVideoID, videoID),
			logging.Float64("probed_fps", rate),
			logging.Int("fps", fps),
			logging.String(logging.FieldImpact, "cue frame indices may drift on long videos"),
			logging.String(logging.FieldErrorHint, "set framerate.native_fps to force a rate"),
		)
	}

	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[string]int)
	}
	r.cache[videoID] = fps
	r.mu.Unlock()
	return fps, nil
}

// Governing returns the rate cue times are converted at: the target rate
// when one is forced, else the native rate.
func Governing(native, target int) int {
	if target > 0 {
		return target
	}
	return native
}

// GoverningFunc adapts a resolver to the per-video rate lookup used by the
// subtitle loader. Unsupported native/target pairs are rejected here, before
// any cue is converted.
func GoverningFunc(r Resolver, target int) func(ctx context.Context, videoID string) (int, error) {
	return func(ctx context.Context, videoID string) (int, error) {
		native, err := r.NativeFPS(ctx, videoID)
		if err != nil {
			return 0, err
		}
		if err := CheckConvertible(native, target); err != nil {
			return 0, err
		}
		return Governing(native, target), nil
	}
}
