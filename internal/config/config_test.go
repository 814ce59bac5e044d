package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Board.ActiveTitle != "ACTIVE PROJECTS" || cfg.Board.FinishedTitle != "FINISHED PROJECTS" {
		t.Fatalf("unexpected board titles %#v", cfg.Board)
	}
	if !cfg.Activity.Enabled || cfg.Activity.MaxEntries <= 0 {
		t.Fatalf("expected activity ledger enabled by default, got %#v", cfg.Activity)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.AccentColor != defaults.UI.AccentColor {
		t.Fatalf("expected default accent color, got %q", cfg.UI.AccentColor)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("  ", Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Board.ActiveTitle != "ACTIVE PROJECTS" {
		t.Fatalf("unexpected title %q", cfg.Board.ActiveTitle)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
level = "debug"

[logging.dev_file]
enabled = false
max_size_mb = 2

[board]
finished_title = "DONE"

[ui]
accent_color = "#7571F9"
show_item_ids = true

[activity]
max_entries = 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled || cfg.Logging.DevFile.MaxSizeMB != 2 {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if cfg.Board.FinishedTitle != "DONE" || cfg.Board.ActiveTitle != "ACTIVE PROJECTS" {
		t.Fatalf("unexpected board config %#v", cfg.Board)
	}
	if cfg.UI.AccentColor != "#7571F9" || !cfg.UI.ShowItemIDs {
		t.Fatalf("unexpected ui config %#v", cfg.UI)
	}
	if cfg.Activity.MaxEntries != 20 {
		t.Fatalf("unexpected max entries %d", cfg.Activity.MaxEntries)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"level":       "[logging]\nlevel = \"loud\"\n",
		"title":       "[board]\nactive_title = \"  \"\n",
		"color":       "[ui]\naccent_color = \"purple\"\n",
		"ansi range":  "[ui]\nmuted_color = \"300\"\n",
		"max entries": "[activity]\nmax_entries = -1\n",
		"backups":     "[logging.dev_file]\nmax_backups = -2\n",
		"dup keys":    "[keys]\nactivity_log = \"i\"\n",
		"bad toml":    "[ui\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := Load(path, Default()); err == nil {
			t.Fatalf("%s: expected Load() error", name)
		}
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}

func TestWatcherSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	other := filepath.Join(dir, "other.toml")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})
	w.Start()

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case <-w.Changes():
		t.Fatal("expected unrelated files to be ignored")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("[ui]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change signal after writing the config file")
	}
}

func TestWatcherPathIsAbsolute(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	w, err := NewWatcher("config.toml", 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})
	if !filepath.IsAbs(w.Path()) || filepath.Base(w.Path()) != "config.toml" {
		t.Fatalf("Path() = %q, want absolute config.toml", w.Path())
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "config.toml"), 0, nil); err == nil {
		t.Fatal("expected error for a missing directory")
	}
}
