package framerate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"posecorpus/internal/logging"
	"posecorpus/internal/media/ffprobe"
	"posecorpus/internal/services"
)

func videoDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFixedResolver(t *testing.T) {
	fps, err := FixedResolver{FPS: 50}.NativeFPS(context.Background(), "071")
	if err != nil || fps != 50 {
		t.Fatalf("unexpected result %d %v", fps, err)
	}
	if _, err := (FixedResolver{}).NativeFPS(context.Background(), "071"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestProbeResolverRoundsAndCaches(t *testing.T) {
	dir := videoDir(t, "focusnews.071.mp4", "focusnews.072.mp4")
	calls := map[string]int{}
	rates := map[string]string{
		"focusnews.071.mp4": "50/1",
		"focusnews.072.mp4": "30000/1001",
	}
	resolver := &ProbeResolver{
		VideoDir:   dir,
		Binary:     "ffprobe",
		IDPosition: 1,
		Logger:     logging.NewNop(),
		Probe: func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
			name := filepath.Base(path)
			calls[name]++
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video", AvgFrameRate: rates[name]}}}, nil
		},
	}

	for i := 0; i < 2; i++ {
		fps, err := resolver.NativeFPS(context.Background(), "071")
		if err != nil || fps != 50 {
			t.Fatalf("071: %d %v", fps, err)
		}
	}
	if calls["focusnews.071.mp4"] != 1 {
		t.Fatalf("expected cached probe, got %d calls", calls["focusnews.071.mp4"])
	}
	fps, err := resolver.NativeFPS(context.Background(), "072")
	if err != nil || fps != 30 {
		t.Fatalf("072: %d %v", fps, err)
	}
}

func TestProbeResolverErrors(t *testing.T) {
	dir := videoDir(t, "focusnews.071.mp4")
	probeErr := errors.New("boom")
	resolver := &ProbeResolver{
		VideoDir:   dir,
		IDPosition: 1,
		Probe: func(context.Context, string, string) (ffprobe.Result, error) {
			return ffprobe.Result{}, probeErr
		},
	}
	if _, err := resolver.NativeFPS(context.Background(), "999"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing video, got %v", err)
	}
	_, err := resolver.NativeFPS(context.Background(), "071")
	if !errors.Is(err, services.ErrExternalTool) || !errors.Is(err, probeErr) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	resolver = &ProbeResolver{
		VideoDir:   dir,
		IDPosition: 1,
		Probe: func(context.Context, string, string) (ffprobe.Result, error) {
			return ffprobe.Result{}, nil
		},
	}
	if _, err := resolver.NativeFPS(context.Background(), "071"); !errors.Is(err, services.ErrDataCorruption) {
		t.Fatalf("expected data corruption without a rate, got %v", err)
	}
}

func TestGoverning(t *testing.T) {
	if Governing(50, 0) != 50 || Governing(50, 25) != 25 {
		t.Fatal("unexpected governing rate")
	}
	fn := GoverningFunc(FixedResolver{FPS: 50}, 25)
	if fps, err := fn(context.Background(), "x"); err != nil || fps != 25 {
		t.Fatalf("GoverningFunc: %d %v", fps, err)
	}
	fn = GoverningFunc(FixedResolver{FPS: 24}, 25)
	if _, err := fn(context.Background(), "x"); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}
