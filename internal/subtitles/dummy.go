package subtitles

import (
	"bytes"
	"time"

	"posecorpus/internal/fileutil"
)

// DummyText is the content of the single cue written for videos that have no
// subtitles.
const DummyText = "Dummy string"

// WriteDummy writes a one-cue SRT file covering [0, duration) to path.
func WriteDummy(path string, duration time.Duration) error {
	var buf bytes.Buffer
	if err := Write(&buf, []Cue{{Index: 1, Start: 0, End: duration, Text: DummyText}}); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
