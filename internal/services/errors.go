package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrUnsupported      = errors.New("unsupported feature")
	ErrDataCorruption   = errors.New("data corruption")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrExternalTool     = errors.New("external tool error")
	ErrValidation       = errors.New("validation error")
)

// Kind classifies a pipeline failure. Every fatal error returned by the
// pipeline maps to exactly one kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindUnsupported
	KindDataCorruption
	KindCapacityExceeded
	KindExternalTool
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUnsupported:
		return "unsupported"
	case KindDataCorruption:
		return "data_corruption"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindExternalTool:
		return "external_tool"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var markerKinds = []struct {
	marker error
	kind   Kind
}{
	{ErrConfiguration, KindConfiguration},
	{ErrUnsupported, KindUnsupported},
	{ErrDataCorruption, KindDataCorruption},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrExternalTool, KindExternalTool},
	{ErrValidation, KindValidation},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf reports the classification of err. The first matching marker in the
// chain wins; errors without a marker are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, mk := range markerKinds {
		if errors.Is(err, mk.marker) {
			return mk.kind
		}
	}
	return KindUnknown
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfiguration, KindValidation:
		return 2
	case KindUnsupported:
		return 3
	case KindDataCorruption:
		return 4
	case KindCapacityExceeded:
		return 5
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
