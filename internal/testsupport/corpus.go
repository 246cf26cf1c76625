package testsupport

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"posecorpus/internal/config"
)

// Video describes the input files of one fixture video.
type Video struct {
	ID     string
	Frames [][]OpenPosePerson
	Cues   []SRTCue
	// NoSubtitles skips the subtitle file.
	NoSubtitles bool
	// NoPoses skips the pose archive.
	NoPoses bool
	// Compressed writes the pose archive as .tar.xz instead of .tar.
	Compressed bool
}

// WriteVideos writes subtitle files, openpose archives and placeholder video
// files under the input root of cfg. Files are named focusnews.<id>.*.
func WriteVideos(t testing.TB, cfg *config.Config, videos ...Video) {
	t.Helper()

	root := cfg.Paths.InputDir
	for _, v := range videos {
		WriteFile(t, filepath.Join(root, "videos", "focusnews."+v.ID+".mp4"), 16)
		if !v.NoSubtitles {
			WriteSRT(t, filepath.Join(root, "subtitles", "focusnews."+v.ID+".srt"), v.Cues...)
		}
		if v.NoPoses {
			continue
		}
		if v.Compressed {
			WriteOpenPoseTarXZ(t, filepath.Join(root, "openpose", "focusnews."+v.ID+".openpose.tar.xz"), v.Frames)
		} else {
			WriteOpenPoseTar(t, filepath.Join(root, "openpose", "focusnews."+v.ID+".openpose.tar"), v.Frames)
		}
	}
}

// ReadLines returns the lines of a text file.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}
