package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720,
     "avg_frame_rate": "50/1", "r_frame_rate": "50/1", "nb_frames": "4525", "duration": "90.500000"}
  ],
  "format": {"filename": "focusnews.071.mp4", "nb_streams": 2, "duration": "90.520000", "format_name": "mov,mp4"}
}`

func TestDecodeAndHelpers(t *testing.T) {
	result, err := Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.FrameRate() != 50 {
		t.Fatalf("unexpected frame rate: %v", result.FrameRate())
	}
	if result.FrameCount() != 4525 {
		t.Fatalf("unexpected frame count: %d", result.FrameCount())
	}
	if result.VideoDuration() != 90500*time.Millisecond {
		t.Fatalf("unexpected video duration: %v", result.VideoDuration())
	}
	if result.DurationSeconds() != 90.52 {
		t.Fatalf("unexpected container duration: %v", result.DurationSeconds())
	}
}

func TestFrameRateFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		stream Stream
		want   float64
	}{
		{"avg", Stream{CodecType: "video", AvgFrameRate: "25/1", RFrameRate: "50/1"}, 25},
		{"r when avg unknown", Stream{CodecType: "video", AvgFrameRate: "0/0", RFrameRate: "30000/1001"}, 30000.0 / 1001.0},
		{"plain number", Stream{CodecType: "video", AvgFrameRate: "24"}, 24},
		{"missing", Stream{CodecType: "video"}, 0},
		{"garbage", Stream{CodecType: "video", AvgFrameRate: "a/b"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Result{Streams: []Stream{tt.stream}}
			if got := result.FrameRate(); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("FrameRate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVideoDurationFallsBackToContainer(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", AvgFrameRate: "25/1"}},
		Format:  Format{Duration: "12.5"},
	}
	if result.VideoDuration() != 12500*time.Millisecond {
		t.Fatalf("unexpected duration: %v", result.VideoDuration())
	}
	if (Result{}).VideoDuration() != 0 {
		t.Fatal("expected zero duration without metadata")
	}
}

func TestInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.FrameCount() != 0 {
		t.Fatal("expected zero frame count without video stream")
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	payload := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(payload, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "fake-ffprobe")
	body := "#!/bin/sh\ncat " + payload + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Inspect(context.Background(), script, "/videos/focusnews.071.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.FrameRate() != 50 {
		t.Fatalf("unexpected frame rate: %v", result.FrameRate())
	}

	if _, err := Inspect(context.Background(), script, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInspectReportsFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "failing-ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'no such file' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(context.Background(), script, "missing.mp4"); err == nil {
		t.Fatal("expected error from failing binary")
	}
}
