package subtitles

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a malformed cue block.
type ParseError struct {
	Block  int
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("srt block %d: %s (%q)", e.Block, e.Reason, e.Line)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads SRT cues from r. Cue text is returned as written, with lines
// joined by "\n". CRLF line endings, a UTF-8 byte order mark and "." as the
// millisecond separator are accepted.
func Parse(r io.Reader) ([]Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var cues []Cue
	for i, block := range splitBlocks(content) {
		cue, err := parseBlock(i+1, block)
		if err != nil {
			return nil, err
		}
		cues = append(cues, cue)
	}
	return cues, nil
}

// splitBlocks splits content on blank lines. Runs of blank lines count as one
// separator.
func splitBlocks(content string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(number int, lines []string) (Cue, error) {
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Cue{}, &ParseError{Block: number, Line: lines[0], Reason: "invalid cue index"}
	}
	if len(lines) < 2 {
		return Cue{}, &ParseError{Block: number, Line: lines[0], Reason: "missing timing line"}
	}
	start, end, err := parseTiming(lines[1])
	if err != nil {
		return Cue{}, &ParseError{Block: number, Line: lines[1], Reason: err.Error()}
	}
	return Cue{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[2:], "\n"),
	}, nil
}

func parseTiming(line string) (time.Duration, time.Duration, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("missing --> separator")
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Position hints such as "X1:40 X2:600" may follow the end time.
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("empty end timestamp")
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(strings.TrimSpace(hms[0]))
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	fraction, errF := parseFraction(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errF != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("timestamp out of range %q", value)
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		fraction
	return total, nil
}

// parseFraction reads the sub-second digits as a decimal fraction, so "5"
// is 500ms and "071" is 71ms. Digits beyond microseconds are dropped.
func parseFraction(digits string) (time.Duration, error) {
	digits = strings.TrimSpace(digits)
	if digits == "" {
		return 0, fmt.Errorf("empty fraction")
	}
	if len(digits) > 6 {
		digits = digits[:6]
	}
	micros, err := strconv.Atoi(digits)
	if err != nil || micros < 0 {
		return 0, fmt.Errorf("invalid fraction %q", digits)
	}
	for i := len(digits); i < 6; i++ {
		micros *= 10
	}
	return time.Duration(micros) * time.Microsecond, nil
}

// FormatTimestamp renders d as an SRT timestamp (HH:MM:SS,mmm). Negative
// values are clamped to zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	msTotal := int64(d / time.Millisecond)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Write renders cues as SRT to w, numbering them from 1 in slice order.
func Write(w io.Writer, cues []Cue) error {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", FormatTimestamp(cue.Start), FormatTimestamp(cue.End))
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
