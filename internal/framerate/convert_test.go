package framerate

import (
	"errors"
	"reflect"
	"testing"

	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

func numberedSequence(frames, fps int) *pose.Sequence {
	header := pose.Header{Type: pose.TypeOpenPose, Components: []pose.Component{{Name: pose.ComponentBody, Points: 25}}}
	seq := pose.NewSequence(header, fps, frames, 1, 2)
	for f := 0; f < frames; f++ {
		seq.Data[seq.PointOffset(f, 0, 0)] = float32(f)
		seq.Confidence[seq.ConfidenceOffset(f, 0, 0)] = float32(f) / 1000
	}
	return seq
}

func frameIDs(seq *pose.Sequence) []int {
	ids := make([]int, seq.Frames)
	for f := range ids {
		ids[f] = int(seq.Data[seq.PointOffset(f, 0, 0)])
	}
	return ids
}

func TestConvertIdentity(t *testing.T) {
	seq := numberedSequence(10, 25)
	for _, target := range []int{0, 25} {
		out, err := Convert(seq, target)
		if err != nil {
			t.Fatalf("Convert(%d): %v", target, err)
		}
		if out.Frames != 10 || out.FPS != 25 {
			t.Fatalf("identity changed shape: %d frames at %d fps", out.Frames, out.FPS)
		}
	}
}

func TestConvertHalves(t *testing.T) {
	seq := numberedSequence(7, 50)
	out, err := Convert(seq, 25)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out.FPS != 25 {
		t.Fatalf("unexpected fps: %d", out.FPS)
	}
	if got := frameIDs(out); !reflect.DeepEqual(got, []int{0, 2, 4, 6}) {
		t.Fatalf("unexpected frames: %v", got)
	}
}

func TestConvertThirtyToTwentyFive(t *testing.T) {
	seq := numberedSequence(13, 30)
	out, err := Convert(seq, 25)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want := []int{1, 2, 3, 4, 5, 7, 8, 9, 10, 11}
	if got := frameIDs(out); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected frames: %v", got)
	}
	for f := 0; f < out.Frames; f++ {
		wantConf := float32(want[f]) / 1000
		if out.Confidence[out.ConfidenceOffset(f, 0, 0)] != wantConf {
			t.Fatalf("confidence out of step at frame %d", f)
		}
	}
}

func TestThirtyToTwentyFiveLength(t *testing.T) {
	for _, n := range []int{0, 6, 12, 60, 3000} {
		kept, err := KeptFrames(n, 30, 25)
		if err != nil {
			t.Fatalf("KeptFrames(%d): %v", n, err)
		}
		if len(kept) != n-n/6 {
			t.Fatalf("n=%d: kept %d frames, want %d", n, len(kept), n-n/6)
		}
	}
	// Index 0 of a partial trailing group of six is dropped as well.
	kept, _ := KeptFrames(7, 30, 25)
	if len(kept) != 5 {
		t.Fatalf("n=7: kept %d frames, want 5", len(kept))
	}
	for _, k := range kept {
		if k%6 == 0 {
			t.Fatalf("index %d should have been dropped", k)
		}
	}
}

func TestConvertRejectsUnsupportedPairs(t *testing.T) {
	for _, pair := range [][2]int{{24, 25}, {25, 30}, {60, 25}, {25, 50}} {
		_, err := Convert(numberedSequence(3, pair[0]), pair[1])
		if !errors.Is(err, services.ErrUnsupported) {
			t.Fatalf("%d->%d: expected unsupported, got %v", pair[0], pair[1], err)
		}
		if err := CheckConvertible(pair[0], pair[1]); err == nil {
			t.Fatalf("%d->%d: CheckConvertible should fail", pair[0], pair[1])
		}
	}
}
