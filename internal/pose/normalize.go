package pose

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"posecorpus/internal/logging"
	"posecorpus/internal/services"
)

// Scope selects how many transforms the normalizer computes.
type Scope string

const (
	// ScopeSequence applies one transform per person to every frame.
	ScopeSequence Scope = "sequence"
	// ScopeFrame computes a transform per frame and falls back to the
	// sequence transform when a frame lacks a reference point.
	ScopeFrame Scope = "frame"
)

// ParseScope maps a configuration value onto a Scope.
func ParseScope(value string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(value))) {
	case "", ScopeSequence:
		return ScopeSequence, nil
	case ScopeFrame:
		return ScopeFrame, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "pose", "normalize", fmt.Sprintf("unknown scope %q", value), nil)
	}
}

// Normalizer moves the shoulder midpoint to the origin and scales the
// shoulder distance to 1.
type Normalizer struct {
	Scope  Scope
	Logger *slog.Logger
}

type transform struct {
	center []float64
	scale  float64
	ok     bool
}

// Normalize returns a normalized copy of seq. Points with zero confidence
// stay at zero. A sequence without any confident shoulder pair is returned
// unchanged.
func (n Normalizer) Normalize(ctx context.Context, seq *Sequence) (*Sequence, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(n.Logger, "normalize"))

	right, left, err := referencePoints(seq.Header)
	if err != nil {
		return nil, err
	}
	if err := seq.Validate(); err != nil {
		return nil, services.Wrap(services.ErrDataCorruption, "pose", "normalize", "", err)
	}

	out := seq.Clone()
	anyTransform := false
	for person := 0; person < seq.Persons; person++ {
		base := sequenceTransform(seq, person, right, left)
		if base.ok {
			anyTransform = true
		}
		for frame := 0; frame < seq.Frames; frame++ {
			t := base
			if n.Scope == ScopeFrame {
				if ft := frameTransform(seq, frame, person, right, left); ft.ok {
					t = ft
					anyTransform = true
				}
			}
			if !t.ok {
				continue
			}
			applyTransform(out, frame, person, t)
		}
	}

	if !anyTransform {
		logging.WarnWithContext(logger, "no confident shoulder pair, poses left unnormalized", "normalize_skipped",
			logging.Int("frames", seq.Frames),
			logging.String(logging.FieldImpact, "examples of this video keep raw pixel coordinates"),
			logging.String(logging.FieldErrorHint, "check that the tracked person is visible"),
		)
		return seq.Clone(), nil
	}
	return out, nil
}

func referencePoints(h Header) (int, int, error) {
	if h.Type != TypeOpenPose {
		return 0, 0, services.Wrap(services.ErrUnsupported, "pose", "normalize",
			fmt.Sprintf("normalization is not defined for %q poses", h.Type), nil)
	}
	right, okR := h.PointIndex(ComponentBody, BodyRightShoulder)
	left, okL := h.PointIndex(ComponentBody, BodyLeftShoulder)
	if !okR || !okL {
		return 0, 0, services.Wrap(services.ErrUnsupported, "pose", "normalize", "sequence has no BODY_25 component", nil)
	}
	return right, left, nil
}

// pair returns the two shoulder points of one frame when both are confident
// and distinct.
func pair(seq *Sequence, frame, person, right, left int) ([]float32, []float32, bool) {
	if seq.Confidence[seq.ConfidenceOffset(frame, person, right)] <= 0 ||
		seq.Confidence[seq.ConfidenceOffset(frame, person, left)] <= 0 {
		return nil, nil, false
	}
	ro := seq.PointOffset(frame, person, right)
	lo := seq.PointOffset(frame, person, left)
	r := seq.Data[ro : ro+seq.Dims]
	l := seq.Data[lo : lo+seq.Dims]
	if distance(r, l) == 0 {
		return nil, nil, false
	}
	return r, l, true
}

func frameTransform(seq *Sequence, frame, person, right, left int) transform {
	r, l, ok := pair(seq, frame, person, right, left)
	if !ok {
		return transform{}
	}
	center := make([]float64, seq.Dims)
	for d := range center {
		center[d] = (float64(r[d]) + float64(l[d])) / 2
	}
	return transform{center: center, scale: distance(r, l), ok: true}
}

// sequenceTransform averages the shoulder midpoint and distance over every
// frame where the pair is confident.
func sequenceTransform(seq *Sequence, person, right, left int) transform {
	center := make([]float64, seq.Dims)
	var scale float64
	count := 0
	for frame := 0; frame < seq.Frames; frame++ {
		r, l, ok := pair(seq, frame, person, right, left)
		if !ok {
			continue
		}
		for d := range center {
			center[d] += (float64(r[d]) + float64(l[d])) / 2
		}
		scale += distance(r, l)
		count++
	}
	if count == 0 {
		return transform{}
	}
	for d := range center {
		center[d] /= float64(count)
	}
	return transform{center: center, scale: scale / float64(count), ok: true}
}

func applyTransform(out *Sequence, frame, person int, t transform) {
	for point := 0; point < out.Points; point++ {
		if out.Confidence[out.ConfidenceOffset(frame, person, point)] <= 0 {
			continue
		}
		offset := out.PointOffset(frame, person, point)
		for d := 0; d < out.Dims; d++ {
			out.Data[offset+d] = float32((float64(out.Data[offset+d]) - t.center[d]) / t.scale)
		}
	}
}

func distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
