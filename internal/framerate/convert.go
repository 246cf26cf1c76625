package framerate

import (
	"fmt"

	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

// CheckConvertible reports an unsupported error when native cannot be
// converted to target.
func CheckConvertible(native, target int) error {
	if _, err := plan(native, target); err != nil {
		return err
	}
	return nil
}

type rule int

const (
	ruleIdentity rule = iota
	ruleHalve
	ruleThirtyToTwentyFive
)

func plan(native, target int) (rule, error) {
	switch {
	case target <= 0 || native == target:
		return ruleIdentity, nil
	case native == 2*target:
		return ruleHalve, nil
	case native == 30 && target == 25:
		return ruleThirtyToTwentyFive, nil
	default:
		return 0, services.Wrap(services.ErrUnsupported, "framerate", "convert",
			fmt.Sprintf("cannot convert %d fps to %d fps", native, target), nil)
	}
}

// KeptFrames returns the indices of the frames kept when a sequence of n
// frames is converted from native to target.
func KeptFrames(n, native, target int) ([]int, error) {
	r, err := plan(native, target)
	if err != nil {
		return nil, err
	}
	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		switch r {
		case ruleHalve:
			if i%2 != 0 {
				continue
			}
		case ruleThirtyToTwentyFive:
			if i%6 == 0 {
				continue
			}
		}
		kept = append(kept, i)
	}
	return kept, nil
}

// Convert returns seq at the target rate. A target of zero, or equal to the
// native rate, returns seq itself.
func Convert(seq *pose.Sequence, target int) (*pose.Sequence, error) {
	r, err := plan(seq.FPS, target)
	if err != nil {
		return nil, err
	}
	if r == ruleIdentity {
		return seq, nil
	}
	kept, err := KeptFrames(seq.Frames, seq.FPS, target)
	if err != nil {
		return nil, err
	}
	return seq.SelectFrames(kept, target), nil
}
