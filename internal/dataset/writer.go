package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"posecorpus/internal/pose"
	"posecorpus/internal/services"
	"posecorpus/internal/split"
)

// Unlimited disables the example cap of a writer.
const Unlimited = -1

// CappedWriter writes one subset: a text line and a feature row per example.
type CappedWriter struct {
	subset       split.Subset
	max          int
	count        int
	textPath     string
	featuresPath string
	text         *os.File
	buf          *bufio.Writer
	features     *Container
}

// NewCappedWriter creates the text file and feature container of a subset.
// Existing files are replaced. max is Unlimited or the largest number of
// examples Add accepts.
func NewCappedWriter(ctx context.Context, subset split.Subset, textPath, featuresPath string, poseType pose.Type, max int) (*CappedWriter, error) {
	text, err := os.Create(textPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "create", textPath, err)
	}
	features, err := Create(ctx, featuresPath, poseType)
	if err != nil {
		_ = text.Close()
		return nil, err
	}
	return &CappedWriter{
		subset:       subset,
		max:          max,
		textPath:     textPath,
		featuresPath: featuresPath,
		text:         text,
		buf:          bufio.NewWriter(text),
		features:     features,
	}, nil
}

// Add writes one example. It fails with ErrCapacityExceeded once the cap is
// reached; nothing is written in that case.
func (w *CappedWriter) Add(ctx context.Context, text string, f pose.Features) error {
	if w.max != Unlimited && w.count >= w.max {
		return services.Wrap(services.ErrCapacityExceeded, "dataset", "add",
			fmt.Sprintf("%s writer is full at %d examples", w.subset, w.max), nil)
	}
	if strings.ContainsAny(text, "\r\n") {
		return services.Wrap(services.ErrValidation, "dataset", "add", "example text contains a line break", nil)
	}
	if err := w.features.Append(ctx, f); err != nil {
		return err
	}
	if _, err := w.buf.WriteString(text); err != nil {
		return fmt.Errorf("write %s: %w", w.textPath, err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s: %w", w.textPath, err)
	}
	w.count++
	return nil
}

// Subset returns the subset this writer holds.
func (w *CappedWriter) Subset() split.Subset { return w.subset }

// Count returns the number of examples written.
func (w *CappedWriter) Count() int { return w.count }

// Max returns the cap, or Unlimited.
func (w *CappedWriter) Max() int { return w.max }

// Close flushes and closes both files.
func (w *CappedWriter) Close(ctx context.Context) error {
	var errs []error
	if w.buf != nil {
		if err := w.buf.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", w.textPath, err))
		}
		w.buf = nil
	}
	if w.text != nil {
		if err := w.text.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", w.textPath, err))
		}
		w.text = nil
	}
	if w.features != nil {
		if err := w.features.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		w.features = nil
	}
	return errors.Join(errs...)
}

// TextPath returns the text file of subset under dir.
func TextPath(dir, prefix string, subset split.Subset) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.txt", prefix, subset))
}

// FeaturesPath returns the feature container of subset under dir.
func FeaturesPath(dir, prefix string, poseType pose.Type, subset split.Subset) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.%s.db", prefix, poseType, subset))
}

// WriterConfig describes the writers of one run.
type WriterConfig struct {
	Dir      string
	Prefix   string
	PoseType pose.Type
	// Caps holds the maximum per subset; a missing subset is Unlimited.
	Caps map[split.Subset]int
}

// OutputFile names the files of one subset.
type OutputFile struct {
	Subset   split.Subset
	Text     string
	Features string
	Examples int
	Max      int
}

// Writers routes examples to the writer of their subset.
type Writers struct {
	writers map[split.Subset]*CappedWriter
}

// OpenWriters creates train, dev and test writers under cfg.Dir.
func OpenWriters(ctx context.Context, cfg WriterConfig) (*Writers, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "output dir", cfg.Dir, err)
	}
	ws := &Writers{writers: make(map[split.Subset]*CappedWriter, len(split.Subsets))}
	for _, subset := range split.Subsets {
		max, ok := cfg.Caps[subset]
		if !ok {
			max = Unlimited
		}
		w, err := NewCappedWriter(ctx, subset,
			TextPath(cfg.Dir, cfg.Prefix, subset),
			FeaturesPath(cfg.Dir, cfg.Prefix, cfg.PoseType, subset),
			cfg.PoseType, max)
		if err != nil {
			_ = ws.Close(ctx)
			return nil, err
		}
		ws.writers[subset] = w
	}
	return ws, nil
}

// Add writes an example to the writer of subset.
func (ws *Writers) Add(ctx context.Context, subset split.Subset, text string, f pose.Features) error {
	w, ok := ws.writers[subset]
	if !ok {
		return services.Wrap(services.ErrValidation, "dataset", "add", fmt.Sprintf("no writer for subset %s", subset), nil)
	}
	return w.Add(ctx, text, f)
}

// Files describes every writer in subset order.
func (ws *Writers) Files() []OutputFile {
	out := make([]OutputFile, 0, len(ws.writers))
	for _, subset := range split.Subsets {
		w, ok := ws.writers[subset]
		if !ok {
			continue
		}
		out = append(out, OutputFile{
			Subset:   subset,
			Text:     w.textPath,
			Features: w.featuresPath,
			Examples: w.count,
			Max:      w.max,
		})
	}
	return out
}

// Close closes every writer.
func (ws *Writers) Close(ctx context.Context) error {
	var errs []error
	for _, subset := range split.Subsets {
		if w, ok := ws.writers[subset]; ok {
			if err := w.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
