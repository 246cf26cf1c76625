package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"posecorpus/internal/config"
	"posecorpus/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "posecorpus.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig writes the keys the tests rely on. Seed and dev/test size
// are written only when set.
func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var sb strings.Builder
	fmt.Fprintf(&sb, "[paths]\ninput_dir = %q\noutput_dir = %q\nlog_dir = %q\n\n",
		cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.LogDir)
	sb.WriteString("[split]\n")
	if cfg.Split.Seed != nil {
		fmt.Fprintf(&sb, "seed = %d\n", *cfg.Split.Seed)
	}
	if cfg.Split.DevTestSize != nil {
		fmt.Fprintf(&sb, "devtest_size = %d\n", *cfg.Split.DevTestSize)
	}
	fmt.Fprintf(&sb, "\n[framerate]\nnative_fps = %d\n", cfg.FrameRate.NativeFPS)
	if cfg.FrameRate.FFprobeBinary != "" {
		fmt.Fprintf(&sb, "ffprobe_binary = %q\n", cfg.FrameRate.FFprobeBinary)
	}
	fmt.Fprintf(&sb, "\n[logging]\nlevel = %q\n", "error")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
