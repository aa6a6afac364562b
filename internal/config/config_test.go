package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_MaxLines(t *testing.T) {
	cfg := Default()
	if cfg.MaxLines != 10000 {
		t.Fatalf("Default().MaxLines = %d, want %d", cfg.MaxLines, 10000)
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	t.Setenv("SCROLLKEEP_SPILL_DIR", "")
	t.Setenv("SCROLLKEEP_MAX_LINES", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("cfg.Source = %q, want %q", cfg.Source, path)
	}
	if cfg.MaxLines != 10000 {
		t.Fatalf("cfg.MaxLines = %d, want %d", cfg.MaxLines, 10000)
	}
}

func TestLoad_FromTOML(t *testing.T) {
	t.Setenv("SCROLLKEEP_SPILL_DIR", "")
	t.Setenv("SCROLLKEEP_MAX_LINES", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
max_lines = 500
spill_threshold = 1048576
spill_dir = "/var/tmp/scrollkeep"
width = 120
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxLines != 500 {
		t.Fatalf("cfg.MaxLines = %d, want %d", cfg.MaxLines, 500)
	}
	if cfg.SpillThreshold != 1048576 {
		t.Fatalf("cfg.SpillThreshold = %d, want %d", cfg.SpillThreshold, 1048576)
	}
	if cfg.SpillDir != "/var/tmp/scrollkeep" {
		t.Fatalf("cfg.SpillDir = %q", cfg.SpillDir)
	}
	if cfg.Width != 120 {
		t.Fatalf("cfg.Width = %d, want %d", cfg.Width, 120)
	}
}

func TestLoad_EnvOverridesTOML(t *testing.T) {
	t.Setenv("SCROLLKEEP_SPILL_DIR", "/from/env")
	t.Setenv("SCROLLKEEP_MAX_LINES", "42")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
max_lines = 500
spill_dir = "/from/file"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpillDir != "/from/env" {
		t.Fatalf("cfg.SpillDir = %q, want %q", cfg.SpillDir, "/from/env")
	}
	if cfg.MaxLines != 42 {
		t.Fatalf("cfg.MaxLines = %d, want %d", cfg.MaxLines, 42)
	}
}

func TestApplyKVOverrides(t *testing.T) {
	cfg := Default()
	got := ApplyKVOverrides(cfg, []string{"max_lines=7", "width=80", "spill_dir=/x", "bad", "width=oops"})
	if got.MaxLines != 7 {
		t.Fatalf("MaxLines = %d, want 7", got.MaxLines)
	}
	if got.Width != 80 {
		t.Fatalf("Width = %d, want 80", got.Width)
	}
	if got.SpillDir != "/x" {
		t.Fatalf("SpillDir = %q, want /x", got.SpillDir)
	}
}
