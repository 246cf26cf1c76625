package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"posecorpus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a buildable config seeded with unique temp directories
// per test: an input root with videos/, subtitles/ and openpose/, an output
// directory, and a log directory. Seed 1 and dev/test size 0 are preset; the
// native frame rate is fixed at 25 so no ffprobe is needed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	seed := int64(1)
	devtest := 0
	cfgVal.Split.Seed = &seed
	cfgVal.Split.DevTestSize = &devtest
	cfgVal.FrameRate.NativeFPS = 25

	for _, dir := range []string{"videos", "subtitles", "openpose"} {
		if err := os.MkdirAll(filepath.Join(cfgVal.Paths.InputDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir input %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSeed sets the split seed.
func WithSeed(seed int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.Seed = &seed
	}
}

// WithTrainSize caps the train subset.
func WithTrainSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.TrainSize = &size
	}
}

// WithDevTestSize sets the dev and test subset size.
func WithDevTestSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.DevTestSize = &size
	}
}

// WithDryRun enables dry-run mode.
func WithDryRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.DryRun = true
	}
}

// WithFrameRates sets the fixed native rate and the target rate.
func WithFrameRates(native, target int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FrameRate.NativeFPS = native
		b.cfg.FrameRate.TargetFPS = target
	}
}

// WithFakeFFprobe writes an ffprobe stand-in that reports every video as
// fps frames per second and frames frames long, points the config at it and
// clears the fixed native rate so probing is used.
func WithFakeFFprobe(fps string, frames int) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		payload := fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"video","avg_frame_rate":%q,"nb_frames":"%d"}],"format":{"duration":"0"}}`, fps, frames)
		script := "#!/bin/sh\ncat <<'JSON'\n" + payload + "\nJSON\n"
		target := filepath.Join(binDir, "ffprobe")
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write ffprobe stub: %v", err)
		}
		b.cfg.FrameRate.FFprobeBinary = target
		b.cfg.FrameRate.NativeFPS = 0
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
