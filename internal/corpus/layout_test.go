package corpus_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"posecorpus/internal/corpus"
	"posecorpus/internal/media/ffprobe"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/subtitles"
	"posecorpus/internal/testsupport"
)

func TestLayoutListsEntriesByID(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "openpose", "srf.2020-03-12.openpose.tar.xz"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "openpose", "focusnews.071.openpose.tar"), 1)
	if err := os.MkdirAll(filepath.Join(root, "openpose", "focusnews.072.openpose"), 0o755); err != nil {
		t.Fatal(err)
	}

	layout := corpus.Layout{Root: root, PoseType: pose.TypeOpenPose, IDPosition: 1}
	entries, err := layout.PoseArchives()
	if err != nil {
		t.Fatalf("PoseArchives: %v", err)
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if !reflect.DeepEqual(ids, []string{"071", "072", "2020-03-12"}) {
		t.Fatalf("unexpected ids %v", ids)
	}
	if !corpus.IDSet(entries)["072"] {
		t.Fatal("IDSet misses 072")
	}
	if layout.PoseDir() != filepath.Join(root, "openpose") {
		t.Fatalf("unexpected pose dir %s", layout.PoseDir())
	}
}

func TestLayoutRejectsDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "subtitles", "focusnews.071.srt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "subtitles", "srf.071.srt"), 1)
	layout := corpus.Layout{Root: root, PoseType: pose.TypeOpenPose, IDPosition: 1}
	if _, err := layout.Subtitles(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := layout.Videos(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("missing videos folder must be a configuration error, got %v", err)
	}
}

func TestWriteDummySubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteVideos(t, cfg,
		testsupport.Video{ID: "071", Cues: []testsupport.SRTCue{cue(1, 2, "real")}, NoPoses: true},
		testsupport.Video{ID: "072", NoSubtitles: true, NoPoses: true},
	)
	layout := corpus.Layout{Root: cfg.Paths.InputDir, PoseType: pose.TypeOpenPose, IDPosition: 1}
	probes := 0
	probe := func(context.Context, string, string) (ffprobe.Result, error) {
		probes++
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video", AvgFrameRate: "25/1", NBFrames: "250"}}}, nil
	}

	result, err := corpus.WriteDummySubtitles(context.Background(), layout, corpus.DummyOptions{Probe: probe})
	if err != nil {
		t.Fatalf("WriteDummySubtitles: %v", err)
	}
	want := filepath.Join(layout.SubtitlesDir(), "focusnews.072.srt")
	if !reflect.DeepEqual(result.Written, []string{want}) || len(result.Kept) != 1 || probes != 1 {
		t.Fatalf("unexpected result %+v after %d probes", result, probes)
	}
	file, err := os.Open(want)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	cues, err := subtitles.Parse(file)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cues) != 1 || cues[0].Start != 0 || cues[0].End != 10*time.Second || cues[0].Text != subtitles.DummyText {
		t.Fatalf("unexpected dummy cues %+v", cues)
	}

	result, err = corpus.WriteDummySubtitles(context.Background(), layout, corpus.DummyOptions{Probe: probe, Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if len(result.Written) != 2 || len(result.Kept) != 0 {
		t.Fatalf("overwrite should rewrite both files: %+v", result)
	}
}

func TestWriteDummySubtitlesNeedsDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteVideos(t, cfg, testsupport.Video{ID: "071", NoSubtitles: true, NoPoses: true})
	layout := corpus.Layout{Root: cfg.Paths.InputDir, PoseType: pose.TypeOpenPose, IDPosition: 1}
	_, err := corpus.WriteDummySubtitles(context.Background(), layout, corpus.DummyOptions{
		Probe: func(context.Context, string, string) (ffprobe.Result, error) { return ffprobe.Result{}, nil },
	})
	if !errors.Is(err, services.ErrDataCorruption) {
		t.Fatalf("expected data corruption, got %v", err)
	}
}
