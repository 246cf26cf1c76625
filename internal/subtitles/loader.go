package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"posecorpus/internal/fileutil"
	"posecorpus/internal/logging"
	"posecorpus/internal/services"
	"posecorpus/internal/textutil"
)

// FPSFunc returns the governing frame rate for a video id.
type FPSFunc func(ctx context.Context, id string) (int, error)

// FileStats summarizes one loaded subtitle file.
type FileStats struct {
	Name    string
	ID      string
	FPS     int
	Kept    int
	Skipped int
}

// Index holds the usable cues of every subtitle file, keyed by file id.
type Index struct {
	cues     map[string][]Cue
	Files    []FileStats
	Excluded []string
	Kept     int
	Skipped  int
}

// Cues returns the usable cues for id in file order.
func (ix *Index) Cues(id string) ([]Cue, bool) {
	cues, ok := ix.cues[id]
	return cues, ok
}

// IDs returns the file ids in listing order.
func (ix *Index) IDs() []string {
	ids := make([]string, 0, len(ix.Files))
	for _, f := range ix.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// Total is the size of the example universe: the number of usable cues.
func (ix *Index) Total() int {
	return ix.Kept
}

// Loader reads a directory of SRT files.
type Loader struct {
	IDPosition int
	Form       textutil.UnicodeForm
	// Include, when set, limits loading to the ids it accepts. Other files
	// are listed in Index.Excluded.
	Include func(id string) bool
	Logger  *slog.Logger
}

// LoadDirectory parses every file in dir in name order, normalizes cue text,
// and drops unusable cues. fps supplies the governing frame rate per file id.
func (l Loader) LoadDirectory(ctx context.Context, dir string, fps FPSFunc) (*Index, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(l.Logger, "subtitles"))

	names, err := fileutil.ListFiles(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "subtitles", "list", dir, err)
	}

	index := &Index{cues: make(map[string][]Cue, len(names))}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := textutil.FileID(name, l.IDPosition)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "subtitles", "file id", "", err)
		}
		if seen[id] {
			return nil, services.Wrap(services.ErrConfiguration, "subtitles", "file id",
				fmt.Sprintf("duplicate id %q (file %s)", id, name), nil)
		}
		seen[id] = true
		if l.Include != nil && !l.Include(id) {
			index.Excluded = append(index.Excluded, name)
			continue
		}
		rate, err := fps(ctx, id)
		if err != nil {
			return nil, err
		}
		kept, stats, err := l.loadFile(filepath.Join(dir, name), rate)
		if err != nil {
			return nil, err
		}
		stats.Name = name
		stats.ID = id
		index.cues[id] = kept
		index.Files = append(index.Files, stats)
		index.Kept += stats.Kept
		index.Skipped += stats.Skipped

		logger.Debug("subtitle file loaded",
			logging.String(logging.FieldVideoID, id),
			logging.Int("fps", rate),
			logging.Int("kept", stats.Kept),
			logging.Int("skipped", stats.Skipped),
		)
		if stats.Kept == 0 {
			logging.WarnWithContext(logger, "subtitle file has no usable cues", "subtitles_empty",
				logging.String(logging.FieldVideoID, id),
				logging.String("file", name),
				logging.String(logging.FieldImpact, "video contributes no examples"),
				logging.String(logging.FieldErrorHint, "check cue text and timing"),
			)
		}
	}

	logger.Info("subtitles loaded",
		logging.Int("files", len(index.Files)),
		logging.Int("kept", index.Kept),
		logging.Int("skipped", index.Skipped),
		logging.Int("total", index.Kept+index.Skipped),
		logging.Int("excluded_files", len(index.Excluded)),
	)
	return index, nil
}

func (l Loader) loadFile(path string, fps int) ([]Cue, FileStats, error) {
	stats := FileStats{FPS: fps}
	file, err := os.Open(path)
	if err != nil {
		return nil, stats, services.Wrap(services.ErrConfiguration, "subtitles", "open", path, err)
	}
	defer file.Close()

	raw, err := Parse(file)
	if err != nil {
		return nil, stats, services.Wrap(services.ErrDataCorruption, "subtitles", "parse", path, err)
	}
	kept := make([]Cue, 0, len(raw))
	for _, cue := range raw {
		cue = cue.Normalized(l.Form)
		if !cue.Usable(fps) {
			stats.Skipped++
			continue
		}
		kept = append(kept, cue)
	}
	stats.Kept = len(kept)
	return kept, stats, nil
}

// NewIndex builds an index from already filtered cues, in ids order.
func NewIndex(ids []string, cues map[string][]Cue) *Index {
	index := &Index{cues: make(map[string][]Cue, len(ids))}
	for _, id := range ids {
		list := cues[id]
		index.cues[id] = list
		index.Files = append(index.Files, FileStats{ID: id, Kept: len(list)})
		index.Kept += len(list)
	}
	return index
}
