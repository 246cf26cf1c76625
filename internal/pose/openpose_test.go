package pose_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"posecorpus/internal/logging"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/testsupport"
)

func checkLinear(t *testing.T, seq *pose.Sequence, frames int) {
	t.Helper()
	if seq.Frames != frames || seq.Persons != 1 || seq.Points != 137 || seq.Dims != 2 {
		t.Fatalf("unexpected shape %dx%dx%dx%d", seq.Frames, seq.Persons, seq.Points, seq.Dims)
	}
	if err := seq.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for f := 0; f < frames; f++ {
		offset := seq.PointOffset(f, 0, 3)
		if seq.Data[offset] != float32(f*1000+3) || seq.Data[offset+1] != 3 {
			t.Fatalf("frame %d out of order: %v", f, seq.Data[offset:offset+2])
		}
	}
	// Face points were not written and stay empty.
	face, _ := seq.Header.PointIndex(pose.ComponentFace, 0)
	if seq.Confidence[seq.ConfidenceOffset(0, 0, face)] != 0 {
		t.Fatal("expected zero confidence for missing face points")
	}
}

func TestOpenPoseLoadsTarXZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusnews.071.openpose.tar.xz")
	testsupport.WriteOpenPoseTarXZ(t, path, testsupport.LinearFrames(12))

	provider := &pose.OpenPoseProvider{Logger: logging.NewNop()}
	seq, err := provider.Load(context.Background(), path, 50)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if seq.FPS != 50 {
		t.Fatalf("unexpected fps: %d", seq.FPS)
	}
	checkLinear(t, seq, 12)
}

func TestOpenPoseLoadsTarAndDirectory(t *testing.T) {
	dir := t.TempDir()
	tarPath := filepath.Join(dir, "a.071.openpose.tar")
	testsupport.WriteOpenPoseTar(t, tarPath, testsupport.LinearFrames(5))
	framesDir := filepath.Join(dir, "frames")
	testsupport.WriteOpenPoseDir(t, framesDir, testsupport.LinearFrames(5))

	provider := &pose.OpenPoseProvider{}
	for _, path := range []string{tarPath, framesDir} {
		seq, err := provider.Load(context.Background(), path, 25)
		if err != nil {
			t.Fatalf("Load(%s) returned error: %v", path, err)
		}
		checkLinear(t, seq, 5)
	}
}

func TestOpenPosePadsMissingPersons(t *testing.T) {
	frames := testsupport.LinearFrames(3)
	frames[1] = append(frames[1], testsupport.FrameBody(100))
	frames[2] = nil
	dir := filepath.Join(t.TempDir(), "frames")
	testsupport.WriteOpenPoseDir(t, dir, frames)

	seq, err := (&pose.OpenPoseProvider{}).Load(context.Background(), dir, 25)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if seq.Persons != 2 {
		t.Fatalf("expected 2 persons, got %d", seq.Persons)
	}
	if seq.Confidence[seq.ConfidenceOffset(0, 1, 0)] != 0 {
		t.Fatal("expected padded second person in frame 0")
	}
	if seq.Data[seq.PointOffset(1, 1, 0)] != 100000 {
		t.Fatalf("unexpected second person data: %v", seq.Data[seq.PointOffset(1, 1, 0)])
	}
	if seq.Confidence[seq.ConfidenceOffset(2, 0, 0)] != 0 {
		t.Fatal("expected empty frame 2")
	}
}

func TestOpenPoseRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "frames")
	if err := os.MkdirAll(bad, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, "v_000000000000_keypoints.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := (&pose.OpenPoseProvider{}).Load(context.Background(), bad, 25)
	if !errors.Is(err, services.ErrDataCorruption) {
		t.Fatalf("expected data corruption, got %v", err)
	}

	short := filepath.Join(dir, "short")
	testsupport.WriteOpenPoseDir(t, short, [][]testsupport.OpenPosePerson{{{Body: []float32{1, 2, 3}}}})
	_, err = (&pose.OpenPoseProvider{}).Load(context.Background(), short, 25)
	if !errors.Is(err, services.ErrDataCorruption) {
		t.Fatalf("expected data corruption for truncated body, got %v", err)
	}

	odd := filepath.Join(dir, "a.071.openpose.zip")
	testsupport.WriteFile(t, odd, 10)
	_, err = (&pose.OpenPoseProvider{}).Load(context.Background(), odd, 25)
	if !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected unsupported for zip, got %v", err)
	}

	_, err = (&pose.OpenPoseProvider{}).Load(context.Background(), filepath.Join(dir, "missing.tar.xz"), 25)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing file, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := pose.NewProvider(pose.TypeMediaPipe, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, err := p.Load(context.Background(), "x", 25); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected unsupported for mediapipe, got %v", err)
	}
	if err := pose.TypeMediaPipe.CheckSupported(); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected unsupported check for mediapipe, got %v", err)
	}
	if err := pose.TypeOpenPose.CheckSupported(); err != nil {
		t.Fatalf("openpose must be supported: %v", err)
	}
	if _, err := pose.ParseType("densepose"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
