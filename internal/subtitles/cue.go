package subtitles

import (
	"time"

	"posecorpus/internal/textutil"
)

// Cue is one timed subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// FrameIndex converts a cue time to a frame index at fps. The time is first
// truncated to whole milliseconds, then fps*ms/1000 is truncated, both on
// integers so results do not depend on floating point rounding.
func FrameIndex(t time.Duration, fps int) int {
	ms := int64(t / time.Millisecond)
	return int(int64(fps) * ms / 1000)
}

// StartFrame returns the first frame covered by the cue at fps.
func (c Cue) StartFrame(fps int) int {
	return FrameIndex(c.Start, fps)
}

// EndFrame returns the exclusive end frame of the cue at fps.
func (c Cue) EndFrame(fps int) int {
	return FrameIndex(c.End, fps)
}

// Normalized returns a copy of c with its text normalized.
func (c Cue) Normalized(form textutil.UnicodeForm) Cue {
	c.Text = textutil.NormalizeCueText(c.Text, form)
	return c
}

// Usable reports whether c can become an example at fps. Text is expected to
// be normalized already.
func (c Cue) Usable(fps int) bool {
	if c.Text == "" {
		return false
	}
	return c.StartFrame(fps) < c.EndFrame(fps)
}
