package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"posecorpus/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input and output directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Split contains the subset sizing and reproducibility knobs.
type Split struct {
	// Seed is required by the build and split commands; nil means unset.
	Seed *int64 `toml:"seed"`
	// TrainSize caps the train subset. Nil means no cap.
	TrainSize *int `toml:"train_size" validate:"omitempty,min=0"`
	// DevTestSize is the size of dev and of test. Nil means unset.
	DevTestSize *int `toml:"devtest_size" validate:"omitempty,min=0"`
	DryRun      bool `toml:"dry_run"`
}

// Pose selects the pose family and geometry normalization.
type Pose struct {
	Type           string `toml:"type" validate:"oneof=openpose mediapipe"`
	Normalize      bool   `toml:"normalize"`
	NormalizeScope string `toml:"normalize_scope" validate:"oneof=sequence frame"`
	// Person is the index of the tracked person kept in every example.
	Person int `toml:"person" validate:"min=0"`
}

// FrameRate controls native rate discovery and the optional target rate.
type FrameRate struct {
	// TargetFPS forces every video onto one rate. Zero keeps native rates.
	TargetFPS int `toml:"target_fps" validate:"min=0"`
	// NativeFPS skips probing and treats every video as this rate.
	NativeFPS     int    `toml:"native_fps" validate:"min=0"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Output controls output file naming.
type Output struct {
	Prefix string `toml:"prefix" validate:"required,excludes=/"`
}

// Layout describes how file ids are derived from input file names.
type Layout struct {
	// IDPosition is the dot-delimited token holding the file id.
	IDPosition int `toml:"id_position" validate:"min=0"`
}

// Text controls cue text normalization.
type Text struct {
	UnicodeForm string `toml:"unicode_form" validate:"oneof=none nfc nfkc"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
}

// Config encapsulates all configuration values for posecorpus.
//
// Configuration sections:
//   - Paths: input root, output folder, log folder
//   - Split: seed, train cap, dev/test size, dry run
//   - Pose: pose family, normalization, tracked person
//   - FrameRate: target rate and fixed native rate
//   - Output: output file prefix
//   - Layout: file id position
//   - Text: Unicode normalization of cue text
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Split     Split     `toml:"split"`
	Pose      Pose      `toml:"pose"`
	FrameRate FrameRate `toml:"framerate"`
	Output    Output    `toml:"output"`
	Layout    Layout    `toml:"layout"`
	Text      Text      `toml:"text"`
	Logging   Logging   `toml:"logging"`
}

const (
	envConfigPath   = "POSECORPUS_CONFIG"
	projectFileName = "posecorpus.toml"
)

// DefaultConfigPath returns the absolute path of the per-user configuration
// file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/posecorpus/config.toml")
}

// Load resolves, parses, normalizes and validates the configuration. A .env
// file in the working directory is read first so environment fallbacks can
// come from it.
//
// The file is taken from path when given, else from $POSECORPUS_CONFIG, else
// the first existing of the per-user file and ./posecorpus.toml. When no file
// exists, defaults are used and the per-user path is reported with exists
// false.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	loaded := Default()
	if exists {
		if err := decodeFile(resolved, &loaded); err != nil {
			return nil, "", false, err
		}
	}
	if err := loaded.Refresh(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: unknown keys:\n%s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	explicit := strings.TrimSpace(path)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(envConfigPath))
	}
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		found, err := isFile(expanded)
		return expanded, found, err
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectFileName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		found, err := isFile(candidate)
		if err != nil {
			return "", false, err
		}
		if found {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable used for frame rate and
// duration probing.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.FrameRate.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// HasTrainSize reports whether the train subset is capped.
func (c *Config) HasTrainSize() bool {
	return c.Split.TrainSize != nil
}

// ExpandPath resolves a leading ~ to the home directory and makes the path
// absolute. The empty path stays empty.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue[1:], "/"))
	}
	absolute, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
