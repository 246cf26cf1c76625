package pose

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"posecorpus/internal/logging"
	"posecorpus/internal/services"
)

// openPoseDims is the number of coordinates per OpenPose 2D keypoint; each
// keypoint is stored as x, y, confidence.
const openPoseDims = 2

// OpenPoseProvider loads OpenPose per-frame JSON keypoint files.
type OpenPoseProvider struct {
	Logger *slog.Logger
}

type openPoseFrame struct {
	People []openPosePerson `json:"people"`
}

type openPosePerson struct {
	Body      []float32 `json:"pose_keypoints_2d"`
	Face      []float32 `json:"face_keypoints_2d"`
	LeftHand  []float32 `json:"hand_left_keypoints_2d"`
	RightHand []float32 `json:"hand_right_keypoints_2d"`
}

type namedFrame struct {
	name  string
	frame openPoseFrame
}

// Load reads the keypoint files at path, which may be a directory, a .tar
// archive or a .tar.xz archive, and assembles them into a sequence at fps.
// Frames are ordered by the frame number embedded in the file names.
func (p *OpenPoseProvider) Load(ctx context.Context, archivePath string, fps int) (*Sequence, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "pose"))

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pose", "open", archivePath, err)
	}

	var frames []namedFrame
	switch {
	case info.IsDir():
		frames, err = readFrameDirectory(ctx, archivePath)
	case isTarXZ(archivePath):
		frames, err = readFrameArchive(ctx, archivePath, true)
	case strings.HasSuffix(strings.ToLower(archivePath), ".tar"):
		frames, err = readFrameArchive(ctx, archivePath, false)
	default:
		return nil, services.Wrap(services.ErrUnsupported, "pose", "open",
			fmt.Sprintf("cannot make sense of pose file %s", filepath.Base(archivePath)), nil)
	}
	if err != nil {
		return nil, err
	}

	sortFrames(frames)
	seq, err := assemble(frames, fps)
	if err != nil {
		return nil, services.Wrap(services.ErrDataCorruption, "pose", "assemble", archivePath, err)
	}
	logger.Debug("pose sequence loaded",
		logging.String("path", archivePath),
		logging.Int("frames", seq.Frames),
		logging.Int("persons", seq.Persons),
		logging.Int("fps", fps),
	)
	return seq, nil
}

func isTarXZ(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz")
}

func isKeypointFile(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	return strings.HasSuffix(strings.ToLower(base), ".json") && !strings.HasPrefix(base, ".")
}

func readFrameDirectory(ctx context.Context, dir string) ([]namedFrame, error) {
	var frames []namedFrame
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isKeypointFile(p) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		file, err := os.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()
		frame, err := decodeFrame(file)
		if err != nil {
			return services.Wrap(services.ErrDataCorruption, "pose", "decode", p, err)
		}
		frames = append(frames, namedFrame{name: filepath.Base(p), frame: frame})
		return nil
	})
	if err != nil {
		if errors.Is(err, services.ErrDataCorruption) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrConfiguration, "pose", "read", dir, err)
	}
	return frames, nil
}

func readFrameArchive(ctx context.Context, archivePath string, compressed bool) ([]namedFrame, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pose", "open", archivePath, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if compressed {
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, services.Wrap(services.ErrDataCorruption, "pose", "decompress", archivePath, err)
		}
		reader = xzReader
	}

	var frames []namedFrame
	tr := tar.NewReader(reader)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrDataCorruption, "pose", "untar", archivePath, err)
		}
		if hdr.Typeflag != tar.TypeReg || !isKeypointFile(hdr.Name) {
			continue
		}
		frame, err := decodeFrame(tr)
		if err != nil {
			return nil, services.Wrap(services.ErrDataCorruption, "pose", "decode", archivePath+":"+hdr.Name, err)
		}
		frames = append(frames, namedFrame{name: path.Base(hdr.Name), frame: frame})
	}
	return frames, nil
}

func decodeFrame(r io.Reader) (openPoseFrame, error) {
	var frame openPoseFrame
	if err := json.NewDecoder(r).Decode(&frame); err != nil {
		return openPoseFrame{}, err
	}
	return frame, nil
}

var frameNumberPattern = regexp.MustCompile(`(\d+)(?:_keypoints)?\.json$`)

func frameNumber(name string) (int, bool) {
	match := frameNumberPattern.FindStringSubmatch(strings.ToLower(name))
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func sortFrames(frames []namedFrame) {
	sort.SliceStable(frames, func(i, j int) bool {
		ni, oki := frameNumber(frames[i].name)
		nj, okj := frameNumber(frames[j].name)
		if oki && okj && ni != nj {
			return ni < nj
		}
		if oki != okj {
			return oki
		}
		return frames[i].name < frames[j].name
	})
}

// assemble builds a sequence with as many persons as the busiest frame.
// Persons missing from a frame and components OpenPose did not write are
// left at zero with zero confidence.
func assemble(frames []namedFrame, fps int) (*Sequence, error) {
	persons := 0
	for _, f := range frames {
		if len(f.frame.People) > persons {
			persons = len(f.frame.People)
		}
	}
	header := OpenPoseHeader()
	seq := NewSequence(header, fps, len(frames), persons, openPoseDims)

	for fi, f := range frames {
		for pi, person := range f.frame.People {
			point := 0
			parts := [][]float32{person.Body, person.Face, person.LeftHand, person.RightHand}
			for ci, component := range header.Components {
				values := parts[ci]
				if len(values) != 0 && len(values) != component.Points*3 {
					return nil, fmt.Errorf("%s: %s has %d values, want %d", f.name, component.Name, len(values), component.Points*3)
				}
				for k := 0; k < len(values)/3; k++ {
					offset := seq.PointOffset(fi, pi, point+k)
					seq.Data[offset] = values[3*k]
					seq.Data[offset+1] = values[3*k+1]
					seq.Confidence[seq.ConfidenceOffset(fi, pi, point+k)] = values[3*k+2]
				}
				point += component.Points
			}
		}
	}
	return seq, nil
}
