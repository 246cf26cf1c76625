package corpus

import (
	"fmt"
	"path/filepath"

	"posecorpus/internal/fileutil"
	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/textutil"
)

const (
	videosDirName    = "videos"
	subtitlesDirName = "subtitles"
)

// Layout locates the input folders of a corpus.
type Layout struct {
	Root       string
	PoseType   pose.Type
	IDPosition int
}

// VideosDir holds the source videos.
func (l Layout) VideosDir() string { return filepath.Join(l.Root, videosDirName) }

// SubtitlesDir holds one SRT file per video.
func (l Layout) SubtitlesDir() string { return filepath.Join(l.Root, subtitlesDirName) }

// PoseDir holds one pose archive per video.
func (l Layout) PoseDir() string { return filepath.Join(l.Root, string(l.PoseType)) }

// Dirs returns every input folder the layout expects.
func (l Layout) Dirs() []string {
	return []string{l.VideosDir(), l.SubtitlesDir(), l.PoseDir()}
}

// Entry is a file in an input folder with its id.
type Entry struct {
	ID   string
	Name string
	Path string
}

// PoseArchives lists the pose folder in name order.
func (l Layout) PoseArchives() ([]Entry, error) {
	names, err := fileutil.ListEntries(l.PoseDir())
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "layout", "list poses", l.PoseDir(), err)
	}
	return l.entries(l.PoseDir(), names)
}

// Videos lists the videos folder in name order.
func (l Layout) Videos() ([]Entry, error) {
	names, err := fileutil.ListFiles(l.VideosDir())
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "layout", "list videos", l.VideosDir(), err)
	}
	return l.entries(l.VideosDir(), names)
}

// Subtitles lists the subtitles folder in name order.
func (l Layout) Subtitles() ([]Entry, error) {
	names, err := fileutil.ListFiles(l.SubtitlesDir())
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "layout", "list subtitles", l.SubtitlesDir(), err)
	}
	return l.entries(l.SubtitlesDir(), names)
}

func (l Layout) entries(dir string, names []string) ([]Entry, error) {
	out := make([]Entry, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		id, err := textutil.FileID(name, l.IDPosition)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "layout", "file id", dir, err)
		}
		if prev, dup := seen[id]; dup {
			return nil, services.Wrap(services.ErrConfiguration, "layout", "file id",
				fmt.Sprintf("%s and %s share id %q", prev, name, id), nil)
		}
		seen[id] = name
		out = append(out, Entry{ID: id, Name: name, Path: filepath.Join(dir, name)})
	}
	return out, nil
}

// IDSet returns the ids of entries.
func IDSet(entries []Entry) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[e.ID] = true
	}
	return set
}
