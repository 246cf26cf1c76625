package pose

import "fmt"

// Sequence is the pose data of one video.
type Sequence struct {
	Header  Header
	FPS     int
	Frames  int
	Persons int
	Points  int
	Dims    int
	// Data has Frames*Persons*Points*Dims values in frame-major order.
	Data []float32
	// Confidence has Frames*Persons*Points values in the same order.
	Confidence []float32
}

// NewSequence allocates a zeroed sequence.
func NewSequence(header Header, fps, frames, persons, dims int) *Sequence {
	points := header.Points()
	return &Sequence{
		Header:     header,
		FPS:        fps,
		Frames:     frames,
		Persons:    persons,
		Points:     points,
		Dims:       dims,
		Data:       make([]float32, frames*persons*points*dims),
		Confidence: make([]float32, frames*persons*points),
	}
}

// Validate checks that the slice lengths match the declared shape.
func (s *Sequence) Validate() error {
	if s.Frames < 0 || s.Persons < 0 || s.Points < 0 || s.Dims < 0 {
		return fmt.Errorf("negative sequence shape %dx%dx%dx%d", s.Frames, s.Persons, s.Points, s.Dims)
	}
	if want := s.Frames * s.Persons * s.Points * s.Dims; len(s.Data) != want {
		return fmt.Errorf("pose data has %d values, shape needs %d", len(s.Data), want)
	}
	if want := s.Frames * s.Persons * s.Points; len(s.Confidence) != want {
		return fmt.Errorf("confidence has %d values, shape needs %d", len(s.Confidence), want)
	}
	return nil
}

func (s *Sequence) frameStride() int     { return s.Persons * s.Points * s.Dims }
func (s *Sequence) confFrameStride() int { return s.Persons * s.Points }

// PointOffset returns the index of the first coordinate of a point in Data.
func (s *Sequence) PointOffset(frame, person, point int) int {
	return ((frame*s.Persons+person)*s.Points + point) * s.Dims
}

// ConfidenceOffset returns the index of a point's confidence.
func (s *Sequence) ConfidenceOffset(frame, person, point int) int {
	return (frame*s.Persons+person)*s.Points + point
}

// SelectFrames returns a new sequence holding the given frames in order.
// Data and confidence are copied in lockstep.
func (s *Sequence) SelectFrames(frames []int, fps int) *Sequence {
	out := &Sequence{
		Header:     s.Header,
		FPS:        fps,
		Frames:     len(frames),
		Persons:    s.Persons,
		Points:     s.Points,
		Dims:       s.Dims,
		Data:       make([]float32, 0, len(frames)*s.frameStride()),
		Confidence: make([]float32, 0, len(frames)*s.confFrameStride()),
	}
	ds, cs := s.frameStride(), s.confFrameStride()
	for _, f := range frames {
		out.Data = append(out.Data, s.Data[f*ds:(f+1)*ds]...)
		out.Confidence = append(out.Confidence, s.Confidence[f*cs:(f+1)*cs]...)
	}
	return out
}

// Clone returns a deep copy.
func (s *Sequence) Clone() *Sequence {
	out := *s
	out.Data = append([]float32(nil), s.Data...)
	out.Confidence = append([]float32(nil), s.Confidence...)
	return &out
}

// Features extracts frames [start, end) of one person, flattening points and
// dimensions into one vector per frame.
func (s *Sequence) Features(person, start, end int) (Features, error) {
	if person < 0 || person >= s.Persons {
		return Features{}, fmt.Errorf("person %d out of range (sequence has %d)", person, s.Persons)
	}
	if start < 0 || end > s.Frames || start > end {
		return Features{}, fmt.Errorf("frame range [%d,%d) outside sequence of %d frames", start, end, s.Frames)
	}
	width := s.Points * s.Dims
	values := make([]float32, 0, (end-start)*width)
	for f := start; f < end; f++ {
		offset := s.PointOffset(f, person, 0)
		values = append(values, s.Data[offset:offset+width]...)
	}
	return Features{Frames: end - start, Width: width, Values: values}, nil
}
