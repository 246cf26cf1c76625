package pose

import "fmt"

// Features is a frames × width matrix of one tracked person, stored row-major.
type Features struct {
	Frames int
	Width  int
	Values []float32
}

// NewFeatures wraps values as a frames × width matrix.
func NewFeatures(frames, width int, values []float32) (Features, error) {
	if frames < 0 || width < 0 || len(values) != frames*width {
		return Features{}, fmt.Errorf("features shape %dx%d does not match %d values", frames, width, len(values))
	}
	return Features{Frames: frames, Width: width, Values: values}, nil
}

// Row returns the feature vector of frame i.
func (f Features) Row(i int) []float32 {
	return f.Values[i*f.Width : (i+1)*f.Width]
}
