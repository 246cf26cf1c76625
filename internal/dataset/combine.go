package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

// CombineResult reports a Combine call.
type CombineResult struct {
	Output   string
	Inputs   []InputCount
	Examples int
}

// InputCount is the number of examples copied from one input.
type InputCount struct {
	Path     string
	Examples int
}

// Combine concatenates inputs into a new container at output, in argument
// order. All inputs must share a pose type and feature width.
func Combine(ctx context.Context, output string, inputs []string) (CombineResult, error) {
	result := CombineResult{Output: output}
	if len(inputs) == 0 {
		return result, services.Wrap(services.ErrConfiguration, "dataset", "combine", "no input containers", nil)
	}
	outAbs, _ := filepath.Abs(output)
	for _, in := range inputs {
		if inAbs, _ := filepath.Abs(in); inAbs == outAbs {
			return result, services.Wrap(services.ErrConfiguration, "dataset", "combine",
				fmt.Sprintf("output %s is also an input", output), nil)
		}
	}

	sources := make([]*Container, 0, len(inputs))
	defer func() {
		for _, src := range sources {
			_ = src.Close(ctx)
		}
	}()
	var poseType pose.Type
	width := -1
	for _, in := range inputs {
		src, err := Open(ctx, in)
		if err != nil {
			return result, err
		}
		sources = append(sources, src)
		if poseType == "" {
			poseType = src.PoseType()
		} else if src.PoseType() != poseType {
			return result, services.Wrap(services.ErrConfiguration, "dataset", "combine",
				fmt.Sprintf("%s holds %s poses, expected %s", in, src.PoseType(), poseType), nil)
		}
		if src.Width() >= 0 {
			if width >= 0 && src.Width() != width {
				return result, services.Wrap(services.ErrConfiguration, "dataset", "combine",
					fmt.Sprintf("%s has feature width %d, expected %d", in, src.Width(), width), nil)
			}
			width = src.Width()
		}
	}

	out, err := Create(ctx, output, poseType)
	if err != nil {
		return result, err
	}
	for _, src := range sources {
		copied := 0
		err := src.Iterate(ctx, func(_ int, f pose.Features) error {
			if err := out.Append(ctx, f); err != nil {
				return err
			}
			copied++
			return nil
		})
		if err != nil {
			_ = out.Close(ctx)
			return result, err
		}
		result.Inputs = append(result.Inputs, InputCount{Path: src.Path(), Examples: copied})
		result.Examples += copied
	}
	if err := out.Close(ctx); err != nil {
		return result, err
	}
	return result, nil
}
