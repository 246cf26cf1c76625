package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"posecorpus/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"probe", "ffprobe", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(services.ErrDataCorruption, "", " ", "", nil)
	if err.Error() != "data corruption: pipeline failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindAndExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind services.Kind
		code int
	}{
		{"nil", nil, services.KindUnknown, 0},
		{"configuration", services.Wrap(services.ErrConfiguration, "split", "assign", "too small", nil), services.KindConfiguration, 2},
		{"unsupported", services.Wrap(services.ErrUnsupported, "framerate", "convert", "50->24", nil), services.KindUnsupported, 3},
		{"corruption", services.Wrap(services.ErrDataCorruption, "align", "slice", "start beyond end", nil), services.KindDataCorruption, 4},
		{"capacity", services.Wrap(services.ErrCapacityExceeded, "dataset", "add", "full", nil), services.KindCapacityExceeded, 5},
		{"wrapped twice", fmt.Errorf("video 071: %w", services.Wrap(services.ErrDataCorruption, "align", "", "", nil)), services.KindDataCorruption, 4},
		{"plain", errors.New("io"), services.KindUnknown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.kind {
				t.Fatalf("KindOf = %s, want %s", got, tt.kind)
			}
			if got := services.ExitCode(tt.err); got != tt.code {
				t.Fatalf("ExitCode = %d, want %d", got, tt.code)
			}
		})
	}
}
