package align

import (
	"context"
	"errors"
	"testing"
	"time"

	"posecorpus/internal/logging"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/subtitles"
)

func bodyHeader() pose.Header {
	return pose.Header{Type: pose.TypeOpenPose, Components: []pose.Component{{Name: pose.ComponentBody, Points: 25}}}
}

func sequence(frames, persons int) *pose.Sequence {
	seq := pose.NewSequence(bodyHeader(), 25, frames, persons, 2)
	for f := 0; f < frames; f++ {
		for p := 0; p < persons; p++ {
			for pt := 0; pt < seq.Points; pt++ {
				off := seq.PointOffset(f, p, pt)
				seq.Data[off] = float32(f)
				seq.Data[off+1] = float32(p*100 + pt)
			}
		}
	}
	return seq
}

func cue(start, end time.Duration, text string) subtitles.Cue {
	return subtitles.Cue{Index: 1, Start: start, End: end, Text: text}
}

func collect(t *testing.T, cues []subtitles.Cue, seq *pose.Sequence) ([]Example, Stats, error) {
	t.Helper()
	var out []Example
	engine := Engine{Logger: logging.NewNop()}
	stats, err := engine.Extract(context.Background(), "071", cues, seq, func(ex Example) error {
		out = append(out, ex)
		return nil
	})
	return out, stats, err
}

func TestExtractOneSecondCue(t *testing.T) {
	examples, stats, err := collect(t, []subtitles.Cue{cue(time.Second, 2*time.Second, "hi")}, sequence(100, 2))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(examples) != 1 || stats.Emitted != 1 {
		t.Fatalf("expected one example, got %d", len(examples))
	}
	ex := examples[0]
	if ex.Text != "hi" {
		t.Fatalf("unexpected text %q", ex.Text)
	}
	if ex.Features.Frames != 25 || ex.Features.Width != 50 {
		t.Fatalf("unexpected shape %dx%d", ex.Features.Frames, ex.Features.Width)
	}
	if first := ex.Features.Row(0)[0]; first != 25 {
		t.Fatalf("first row from frame %v, want 25", first)
	}
	if last := ex.Features.Row(24)[0]; last != 49 {
		t.Fatalf("last row from frame %v, want 49", last)
	}
}

func TestExtractKeepsFirstPerson(t *testing.T) {
	examples, _, err := collect(t, []subtitles.Cue{cue(0, 80*time.Millisecond, "a")}, sequence(4, 3))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	row := examples[0].Features.Row(1)
	for pt := 0; pt < 25; pt++ {
		if row[pt*2+1] != float32(pt) {
			t.Fatalf("point %d came from another person: %v", pt, row[pt*2+1])
		}
	}
}

func TestExtractPreservesCueOrder(t *testing.T) {
	cues := []subtitles.Cue{
		cue(2*time.Second, 3*time.Second, "second"),
		cue(0, time.Second, "first"),
	}
	examples, _, err := collect(t, cues, sequence(100, 1))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if examples[0].Text != "second" || examples[1].Text != "first" {
		t.Fatalf("cue order not preserved: %q %q", examples[0].Text, examples[1].Text)
	}
}

func TestExtractClampsEnd(t *testing.T) {
	examples, stats, err := collect(t, []subtitles.Cue{cue(3*time.Second, 5*time.Second, "tail")}, sequence(100, 1))
	if err != nil {
		t.Fatalf("clamped cue must not fail: %v", err)
	}
	if stats.Clamped != 1 {
		t.Fatalf("expected one clamp, got %d", stats.Clamped)
	}
	if examples[0].Features.Frames != 25 {
		t.Fatalf("expected frames [75,100), got %d frames", examples[0].Features.Frames)
	}
}

func TestExtractStartBeyondEndIsCorruption(t *testing.T) {
	for _, start := range []time.Duration{4 * time.Second, 10 * time.Second} {
		_, _, err := collect(t, []subtitles.Cue{cue(start, start+time.Second, "late")}, sequence(100, 1))
		if !errors.Is(err, services.ErrDataCorruption) {
			t.Fatalf("start %v: expected data corruption, got %v", start, err)
		}
	}
}

func TestExtractEmptySequenceIsCorruption(t *testing.T) {
	_, _, err := collect(t, nil, sequence(0, 1))
	if !errors.Is(err, services.ErrDataCorruption) {
		t.Fatalf("expected data corruption, got %v", err)
	}
}

func TestExtractStopsOnEmitError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	cues := []subtitles.Cue{cue(0, time.Second, "a"), cue(time.Second, 2*time.Second, "b")}
	_, err := Engine{}.Extract(context.Background(), "071", cues, sequence(100, 1), func(Example) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("expected stop after first example, got %v after %d calls", err, calls)
	}
}
