package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	envInputDir  = "POSECORPUS_INPUT_DIR"
	envOutputDir = "POSECORPUS_OUTPUT_DIR"
	envLogLevel  = "POSECORPUS_LOG_LEVEL"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePose()
	c.normalizeOutput()
	c.normalizeText()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		if value, ok := os.LookupEnv(envInputDir); ok {
			c.Paths.InputDir = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv(envOutputDir); ok && strings.TrimSpace(value) != "" {
		if c.Paths.OutputDir == "" || c.Paths.OutputDir == defaultOutputDir {
			c.Paths.OutputDir = strings.TrimSpace(value)
		}
	}
	return c.expandPaths()
}

func (c *Config) expandPaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePose() {
	c.Pose.Type = strings.ToLower(strings.TrimSpace(c.Pose.Type))
	if c.Pose.Type == "" {
		c.Pose.Type = defaultPoseType
	}
	c.Pose.NormalizeScope = strings.ToLower(strings.TrimSpace(c.Pose.NormalizeScope))
	if c.Pose.NormalizeScope == "" {
		c.Pose.NormalizeScope = defaultNormalizeScope
	}
	c.FrameRate.FFprobeBinary = strings.TrimSpace(c.FrameRate.FFprobeBinary)
	if c.FrameRate.FFprobeBinary == "" {
		c.FrameRate.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Prefix = strings.TrimSpace(c.Output.Prefix)
	if c.Output.Prefix == "" {
		c.Output.Prefix = defaultOutputPrefix
	}
}

func (c *Config) normalizeText() {
	c.Text.UnicodeForm = strings.ToLower(strings.TrimSpace(c.Text.UnicodeForm))
	if c.Text.UnicodeForm == "" {
		c.Text.UnicodeForm = defaultUnicodeForm
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		if c.Logging.Level == "" || c.Logging.Level == defaultLogLevel {
			c.Logging.Level = value
		}
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Refresh re-applies normalization after callers override fields (for example
// from command-line flags) and validates the result.
func (c *Config) Refresh() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}
