package pose

import (
	"fmt"
	"strings"

	"posecorpus/internal/services"
)

// Type is a pose estimation family.
type Type string

const (
	TypeOpenPose  Type = "openpose"
	TypeMediaPipe Type = "mediapipe"
)

// ParseType maps a configuration value onto a Type.
func ParseType(value string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(value))) {
	case TypeOpenPose:
		return TypeOpenPose, nil
	case TypeMediaPipe:
		return TypeMediaPipe, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "pose", "type",
			fmt.Sprintf("unknown pose type %q (want openpose or mediapipe)", value), nil)
	}
}

func (t Type) String() string { return string(t) }

// Supported reports whether poses of this family can be loaded.
func (t Type) Supported() bool { return t == TypeOpenPose }

// CheckSupported fails with ErrUnsupported for families without a loader.
func (t Type) CheckSupported() error {
	if t.Supported() {
		return nil
	}
	return services.Wrap(services.ErrUnsupported, "pose", "type", fmt.Sprintf("%s poses are not supported", t), nil)
}

// Component is a named group of consecutive points, such as BODY_25.
type Component struct {
	Name   string
	Points int
}

// Header describes the point layout of a sequence.
type Header struct {
	Type       Type
	Components []Component
}

// Points returns the total number of points across all components.
func (h Header) Points() int {
	total := 0
	for _, c := range h.Components {
		total += c.Points
	}
	return total
}

// PointIndex returns the flat index of point within component name.
func (h Header) PointIndex(name string, point int) (int, bool) {
	offset := 0
	for _, c := range h.Components {
		if c.Name == name {
			if point < 0 || point >= c.Points {
				return 0, false
			}
			return offset + point, true
		}
		offset += c.Points
	}
	return 0, false
}

const (
	ComponentBody      = "BODY_25"
	ComponentFace      = "FACE_70"
	ComponentLeftHand  = "HAND_LEFT_21"
	ComponentRightHand = "HAND_RIGHT_21"

	// OpenPose BODY_25 shoulder indices.
	BodyRightShoulder = 2
	BodyLeftShoulder  = 5
)

// OpenPoseHeader is the point layout written by OpenPose with face and hand
// detection enabled: 25 + 70 + 21 + 21 points in two dimensions.
func OpenPoseHeader() Header {
	return Header{
		Type: TypeOpenPose,
		Components: []Component{
			{Name: ComponentBody, Points: 25},
			{Name: ComponentFace, Points: 70},
			{Name: ComponentLeftHand, Points: 21},
			{Name: ComponentRightHand, Points: 21},
		},
	}
}
