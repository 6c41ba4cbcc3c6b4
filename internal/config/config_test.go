package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_DataDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SLICER_DATA_DIR", dir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "slicer.db") {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.RulesDirs()[1] != filepath.Join(dir, "rules") {
		t.Errorf("RulesDirs = %v", cfg.RulesDirs())
	}
	if err := cfg.EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	if _, err := os.Stat(cfg.UserModelDir); err != nil {
		t.Errorf("model dir not created: %v", err)
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "missing.yaml")
	second := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(second, []byte("save_history: true\nrules_enabled: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings([]string{first, second})
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !s.SaveHistory || s.RulesEnabled {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.HistoryLimit != 20 {
		t.Errorf("expected default history limit, got %d", s.HistoryLimit)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings([]string{filepath.Join(t.TempDir(), "none.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	if *s != *DefaultSettings() {
		t.Errorf("got %+v", s)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("history_limit: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings([]string{path}); err == nil {
		t.Error("expected parse error")
	}
}
