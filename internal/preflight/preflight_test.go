package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"posecorpus/internal/services"
	"posecorpus/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryCreatable(t *testing.T) {
	result := CheckDirectoryCreatable("out", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryReadableCountsEntries(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "focusnews.071.srt"), 1)
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden"), 1)
	result := CheckDirectoryReadable("subs", dir)
	if !result.Passed || result.Detail != dir+" (1 entries)" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckPoseType(t *testing.T) {
	if r := CheckPoseType("openpose"); !r.Passed {
		t.Fatalf("openpose should pass: %s", r.Detail)
	}
	if r := CheckPoseType("mediapipe"); r.Passed {
		t.Fatal("mediapipe should fail")
	}
	if r := CheckPoseType("densepose"); r.Passed {
		t.Fatal("unknown type should fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_FixtureConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	if err := Require(context.Background(), cfg); err != nil {
		t.Fatalf("Require: %v", err)
	}
}

func TestRequireReportsMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(filepath.Join(cfg.Paths.InputDir, "subtitles")); err != nil {
		t.Fatal(err)
	}
	err := Require(context.Background(), cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunAll_RequiresFFprobeWhenProbing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.FrameRate.NativeFPS = 0
	cfg.FrameRate.FFprobeBinary = "clearly-not-present-ffprobe"
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "FFprobe" {
		t.Fatalf("expected only ffprobe to fail, got %+v", failed)
	}
}

