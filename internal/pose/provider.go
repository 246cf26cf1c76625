package pose

import (
	"context"
	"fmt"
	"log/slog"

	"posecorpus/internal/services"
)

// Provider loads the pose sequence of one video.
type Provider interface {
	Load(ctx context.Context, path string, fps int) (*Sequence, error)
}

// NewProvider returns the provider for a pose family.
func NewProvider(t Type, logger *slog.Logger) (Provider, error) {
	switch t {
	case TypeOpenPose:
		return &OpenPoseProvider{Logger: logger}, nil
	case TypeMediaPipe:
		return mediaPipeProvider{}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "pose", "provider", fmt.Sprintf("unknown pose type %q", t), nil)
	}
}

type mediaPipeProvider struct{}

func (mediaPipeProvider) Load(context.Context, string, int) (*Sequence, error) {
	return nil, services.Wrap(services.ErrUnsupported, "pose", "load", "mediapipe poses are not supported", nil)
}
