package dataset

import (
	"encoding/binary"
	"fmt"
	"math"

	"posecorpus/internal/pose"
)

// encodeFeatures packs values as little-endian float32.
func encodeFeatures(f pose.Features) []byte {
	buf := make([]byte, 4*len(f.Values))
	for i, v := range f.Values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFeatures(frames, width int, data []byte) (pose.Features, error) {
	if len(data) != 4*frames*width {
		return pose.Features{}, fmt.Errorf("blob has %d bytes, %dx%d features need %d", len(data), frames, width, 4*frames*width)
	}
	values := make([]float32, frames*width)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return pose.NewFeatures(frames, width, values)
}
