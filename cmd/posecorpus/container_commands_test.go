package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"posecorpus/internal/dataset"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

func writeContainer(t *testing.T, path string, examples int) {
	t.Helper()
	ctx := context.Background()
	c, err := dataset.Create(ctx, path, pose.TypeOpenPose)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	for i := 0; i < examples; i++ {
		f, err := pose.NewFeatures(2, 3, []float32{float32(i), 0, 0, 0, 0, 0})
		if err != nil {
			t.Fatalf("features: %v", err)
		}
		if err := c.Append(ctx, f); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSizeCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")
	writeContainer(t, a, 2)
	writeContainer(t, b, 3)

	out, _, err := runCLI(t, []string{"size", a}, "")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("unexpected size output %q", out)
	}

	out, _, err = runCLI(t, []string{"size", "--json", a, b}, "")
	if err != nil {
		t.Fatalf("size --json: %v", err)
	}
	var sizes []containerJSON
	if err := json.Unmarshal([]byte(out), &sizes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sizes) != 2 || sizes[0].Examples != 2 || sizes[1].Examples != 3 || sizes[1].Width != 3 || sizes[0].PoseType != "openpose" {
		t.Fatalf("unexpected sizes %+v", sizes)
	}

	_, _, err = runCLI(t, []string{"size", filepath.Join(dir, "missing.db")}, "")
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected configuration exit code, got %v", err)
	}
}

func TestCombineCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")
	combined := filepath.Join(dir, "all.db")
	writeContainer(t, a, 2)
	writeContainer(t, b, 3)

	out, _, err := runCLI(t, []string{"combine", "--output", combined, a, b}, "")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	requireContains(t, out, "Wrote 5 examples")

	out, _, err = runCLI(t, []string{"size", combined}, "")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if strings.TrimSpace(out) != "5" {
		t.Fatalf("unexpected combined size %q", out)
	}

	if _, _, err := runCLI(t, []string{"combine", a}, ""); services.ExitCode(err) != 2 {
		t.Fatalf("expected missing --output to be a configuration error, got %v", err)
	}
}
