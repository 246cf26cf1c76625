package testsupport

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
)

// OpenPosePerson holds the flat x, y, confidence keypoint arrays of one
// detected person. Nil components are written as empty arrays.
type OpenPosePerson struct {
	Body      []float32
	Face      []float32
	LeftHand  []float32
	RightHand []float32
}

// Keypoints builds a flat x, y, confidence array of n points from fn.
func Keypoints(n int, fn func(point int) (x, y, c float32)) []float32 {
	out := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		x, y, c := fn(i)
		out = append(out, x, y, c)
	}
	return out
}

// FrameBody returns a person whose body point p sits at (frame*1000+p, p)
// with confidence 1. Face and hands are omitted.
func FrameBody(frame int) OpenPosePerson {
	return OpenPosePerson{Body: Keypoints(25, func(p int) (float32, float32, float32) {
		return float32(frame*1000 + p), float32(p), 1
	})}
}

// LinearFrames returns n frames with one FrameBody person each.
func LinearFrames(n int) [][]OpenPosePerson {
	frames := make([][]OpenPosePerson, n)
	for i := range frames {
		frames[i] = []OpenPosePerson{FrameBody(i)}
	}
	return frames
}

type jsonPerson struct {
	PersonID  []int     `json:"person_id"`
	Body      []float32 `json:"pose_keypoints_2d"`
	Face      []float32 `json:"face_keypoints_2d"`
	LeftHand  []float32 `json:"hand_left_keypoints_2d"`
	RightHand []float32 `json:"hand_right_keypoints_2d"`
}

type jsonFrame struct {
	Version float64      `json:"version"`
	People  []jsonPerson `json:"people"`
}

func frameJSON(t testing.TB, people []OpenPosePerson) []byte {
	t.Helper()
	frame := jsonFrame{Version: 1.3, People: []jsonPerson{}}
	for _, p := range people {
		frame.People = append(frame.People, jsonPerson{
			PersonID:  []int{-1},
			Body:      nonNil(p.Body),
			Face:      nonNil(p.Face),
			LeftHand:  nonNil(p.LeftHand),
			RightHand: nonNil(p.RightHand),
		})
	}
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal openpose frame: %v", err)
	}
	return data
}

func nonNil(v []float32) []float32 {
	if v == nil {
		return []float32{}
	}
	return v
}

func frameName(i int) string {
	return fmt.Sprintf("video_%012d_keypoints.json", i)
}

// WriteOpenPoseDir writes one keypoint file per frame into dir.
func WriteOpenPoseDir(t testing.TB, dir string, frames [][]OpenPosePerson) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for i, people := range frames {
		if err := os.WriteFile(filepath.Join(dir, frameName(i)), frameJSON(t, people), 0o644); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}
}

// WriteOpenPoseTar writes frames as an uncompressed tar archive with entries
// under openpose/.
func WriteOpenPoseTar(t testing.TB, path string, frames [][]OpenPosePerson) {
	t.Helper()
	file := createFile(t, path)
	defer file.Close()
	writeTar(t, file, frames)
}

// WriteOpenPoseTarXZ writes frames as an xz-compressed tar archive with
// entries under openpose/, the layout of "<corpus>.<id>.openpose.tar.xz".
func WriteOpenPoseTarXZ(t testing.TB, path string, frames [][]OpenPosePerson) {
	t.Helper()
	file := createFile(t, path)
	defer file.Close()
	xw, err := xz.NewWriter(file)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	writeTar(t, xw, frames)
	if err := xw.Close(); err != nil {
		t.Fatalf("close xz: %v", err)
	}
}

func createFile(t testing.TB, path string) *os.File {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	return file
}

func writeTar(t testing.TB, w io.Writer, frames [][]OpenPosePerson) {
	t.Helper()
	tw := tar.NewWriter(w)
	if err := tw.WriteHeader(&tar.Header{Name: "openpose/", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		t.Fatalf("tar dir header: %v", err)
	}
	// Reverse order exercises frame sorting in the reader.
	for i := len(frames) - 1; i >= 0; i-- {
		data := frameJSON(t, frames[i])
		hdr := &tar.Header{Name: "openpose/" + frameName(i), Mode: 0o644, Size: int64(len(data)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header: %v", err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("tar write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
}
