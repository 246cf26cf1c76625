package subtitles

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseBasic(t *testing.T) {
	raw := "1\n00:00:33,843 --> 00:00:38,097\nErste Zeile\nzweite Zeile\n\n2\n00:00:40,000 --> 00:00:41,500\nNoch ein Satz\n"
	cues, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	first := cues[0]
	if first.Index != 1 || first.Start != 33843*time.Millisecond || first.End != 38097*time.Millisecond {
		t.Fatalf("unexpected first cue: %+v", first)
	}
	if first.Text != "Erste Zeile\nzweite Zeile" {
		t.Fatalf("unexpected text: %q", first.Text)
	}
	if cues[1].End != 41500*time.Millisecond {
		t.Fatalf("unexpected second end: %v", cues[1].End)
	}
}

func TestParseToleratesBOMCRLFAndPeriods(t *testing.T) {
	raw := "\xEF\xBB\xBF1\r\n00:00:01.000 --> 00:00:02.500 X1:10 X2:20\r\nHallo\r\n\r\n\r\n\r\n2\r\n01:00:00,5 --> 01:00:01,25\r\nWelt\r\n"
	cues, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != time.Second || cues[0].End != 2500*time.Millisecond || cues[0].Text != "Hallo" {
		t.Fatalf("unexpected first cue: %+v", cues[0])
	}
	if cues[1].Start != time.Hour+500*time.Millisecond || cues[1].End != time.Hour+time.Second+250*time.Millisecond {
		t.Fatalf("unexpected second cue: %+v", cues[1])
	}
}

func TestParseKeepsEmptyTextCue(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\n\n2\n00:00:03,000 --> 00:00:04,000\ntext\n"
	cues, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 2 || cues[0].Text != "" || cues[1].Text != "text" {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestParseRejectsMalformedTiming(t *testing.T) {
	raw := "1\n00:00:01,000 -> 00:00:02,000\ntext\n"
	_, err := Parse(strings.NewReader(raw))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Block != 1 {
		t.Fatalf("unexpected block: %d", perr.Block)
	}

	if _, err := Parse(strings.NewReader("x\n00:00:01,000 --> 00:00:02,000\nt\n")); err == nil {
		t.Fatal("expected error for non-numeric index")
	}
	if _, err := Parse(strings.NewReader("1\n00:61:01,000 --> 00:00:02,000\nt\n")); err == nil {
		t.Fatal("expected error for out of range minutes")
	}
}

func TestParseEmptyInput(t *testing.T) {
	cues, err := Parse(strings.NewReader("\n\n"))
	if err != nil || len(cues) != 0 {
		t.Fatalf("expected no cues, got %v %v", cues, err)
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	in := []Cue{
		{Index: 1, Start: 0, End: 1500 * time.Millisecond, Text: "a"},
		{Index: 2, Start: 2 * time.Second, End: 3*time.Hour + 4*time.Minute + 5*time.Second + 6*time.Millisecond, Text: "b\nc"},
	}
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "03:04:05,006") {
		t.Fatalf("unexpected timestamp rendering: %q", buf.String())
	}
	out, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d cues, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("cue %d: got %+v want %+v", i, out[i], in[i])
		}
	}
}

func TestFormatTimestampClampsNegative(t *testing.T) {
	if got := FormatTimestamp(-time.Second); got != "00:00:00,000" {
		t.Fatalf("FormatTimestamp(-1s) = %q", got)
	}
}
