package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/tavla/internal/config"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
	"github.com/evanschultz/tavla/internal/tui"
)

func TestMain(m *testing.M) {
	for name, value := range map[string]string{"TAVLA_DEV_MODE": "false", "TAVLA_CONFIG": "", "TAVLA_APP_NAME": ""} {
		if value == "" {
			_ = os.Unsetenv(name)
			continue
		}
		_ = os.Setenv(name, value)
	}
	os.Exit(m.Run())
}

// stubProgram stands in for the terminal program. With a script it drives
// the real model; otherwise Run returns err at once.
type stubProgram struct {
	model  tea.Model
	err    error
	script func(tea.Model) tea.Model
}

func (p stubProgram) Run() (tea.Model, error) {
	if p.script != nil {
		return p.script(p.model), p.err
	}
	return p.model, p.err
}

func (stubProgram) Send(tea.Msg) {}

// withProgram swaps programFactory for the test's lifetime.
func withProgram(t *testing.T, build func(tea.Model) program) {
	t.Helper()
	prev := programFactory
	programFactory = build
	t.Cleanup(func() { programFactory = prev })
}

func withIdleProgram(t *testing.T) {
	withProgram(t, func(m tea.Model) program { return stubProgram{model: m} })
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func tempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if content != "" {
		writeConfig(t, path, content)
	}
	return path
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if got := out.String(); !strings.Contains(got, "tavla") || !strings.Contains(got, version) {
		t.Fatalf("run(--version) printed %q", got)
	}
}

func TestRunStartsProgram(t *testing.T) {
	withIdleProgram(t)
	if err := run(context.Background(), []string{"--config", tempConfig(t, "")}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRunBoardAddsItemThroughForm(t *testing.T) {
	press := func(m tea.Model, msgs ...tea.Msg) tea.Model {
		for _, msg := range msgs {
			m, _ = m.Update(msg)
		}
		return m
	}
	typed := func(s string) []tea.Msg {
		var msgs []tea.Msg
		for _, r := range s {
			msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
		}
		return msgs
	}
	tab := tea.KeyPressMsg{Code: tea.KeyTab}
	withProgram(t, func(m tea.Model) program {
		return stubProgram{model: m, script: func(m tea.Model) tea.Model {
			m = press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
			m = press(m, typed("Launch")...)
			m = press(m, tab)
			m = press(m, typed("Ship the beta build")...)
			m = press(m, tab)
			m = press(m, typed("3")...)
			m = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
			if m.View().Content == nil {
				t.Error("expected rendered board content")
			}
			return m
		}}
	})

	if err := run(context.Background(), []string{"--config", tempConfig(t, "[watch]\nconfig = false\n")}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	items := store.Default().Items()
	if len(items) != 1 {
		t.Fatalf("expected one item on the shared store, got %d", len(items))
	}
	if it := items[0]; it.Title != "Launch" || it.People != 3 || it.Status != domain.StatusActive {
		t.Fatalf("unexpected item %#v", it)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name       string
		args       func(t *testing.T) []string
		runErr     error
		wantErr    string
		wantStderr bool
	}{
		{
			name: "unknown flag",
			args: func(*testing.T) []string { return []string{"--unknown-flag"} },
		},
		{
			name:    "unknown command",
			args:    func(*testing.T) []string { return []string{"unknown-command"} },
			wantErr: "unknown command",
		},
		{
			name: "bad log level",
			args: func(t *testing.T) []string {
				return []string{"--config", tempConfig(t, "[logging]\nlevel = \"chatty\"\n")}
			},
			wantErr:    "logging.level",
			wantStderr: true,
		},
		{
			name:    "program failure",
			args:    func(t *testing.T) []string { return []string{"--config", tempConfig(t, "")} },
			runErr:  io.ErrUnexpectedEOF,
			wantErr: "run tui program",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withProgram(t, func(m tea.Model) program { return stubProgram{model: m, err: tc.runErr} })
			var stderr bytes.Buffer
			err := run(context.Background(), tc.args(t), io.Discard, &stderr)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("run() error = %v, want %q", err, tc.wantErr)
			}
			if tc.wantStderr && strings.TrimSpace(stderr.String()) == "" {
				t.Fatal("expected the error on stderr")
			}
		})
	}
}

func TestRunPathsCommand(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "env.toml")
	flagPath := filepath.Join(t.TempDir(), "custom.toml")
	tests := []struct {
		name string
		env  string
		args []string
		want []string
	}{
		{
			name: "flags",
			args: []string{"--app", "board-test", "--config", flagPath, "paths"},
			want: []string{"app: board-test", "dev_mode: false", "config: " + flagPath, "data_dir:", "log_dir:"},
		},
		{
			name: "config env",
			env:  envPath,
			args: []string{"paths"},
			want: []string{"config: " + envPath},
		},
		{
			name: "flag beats env",
			env:  envPath,
			args: []string{"--config", flagPath, "paths"},
			want: []string{"config: " + flagPath},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.env != "" {
				t.Setenv("TAVLA_CONFIG", tc.env)
			}
			var out strings.Builder
			if err := run(context.Background(), tc.args, &out, io.Discard); err != nil {
				t.Fatalf("run(paths) error = %v", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(out.String(), want) {
					t.Fatalf("paths output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunPaletteCommand(t *testing.T) {
	cfgPath := tempConfig(t, "[ui]\naccent_color = \"#7571F9\"\n\n[board]\nactive_title = \"DOING\"\n")
	var out strings.Builder
	if err := run(context.Background(), []string{"--config", cfgPath, "palette"}, &out, io.Discard); err != nil {
		t.Fatalf("run(palette) error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"accent", "#7571F9", "muted", "marker", "DOING"} {
		if !strings.Contains(got, want) {
			t.Fatalf("palette output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Grayscale") {
		t.Fatal("expected no 256 grid without --all")
	}

	out.Reset()
	if err := run(context.Background(), []string{"--config", cfgPath, "palette", "--all"}, &out, io.Discard); err != nil {
		t.Fatalf("run(palette --all) error = %v", err)
	}
	if !strings.Contains(out.String(), "Grayscale (232-255)") {
		t.Fatal("expected 256 grid with --all")
	}
}

func TestParseBoolEnv(t *testing.T) {
	for value, want := range map[string]struct{ v, ok bool }{
		"true":  {true, true},
		"0":     {false, true},
		"nope":  {false, false},
		"":      {false, false},
		" yes ": {false, false},
	} {
		t.Setenv("TAVLA_BOOL_TEST", value)
		v, ok := parseBoolEnv("TAVLA_BOOL_TEST")
		if v != want.v || ok != want.ok {
			t.Fatalf("parseBoolEnv(%q) = %t, %t; want %t, %t", value, v, ok, want.v, want.ok)
		}
	}
}

func TestRunDevModeLogsToWorkspaceFileOnly(t *testing.T) {
	withIdleProgram(t)
	workspace := t.TempDir()
	t.Chdir(workspace)

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--config", filepath.Join(workspace, "config.toml")}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected a quiet terminal while the board runs, got %q", got)
	}

	logs, err := filepath.Glob(filepath.Join(workspace, ".tavla", "log", "*.log"))
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected one dev log file, got %v (err %v)", logs, err)
	}
	content, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"starting tui program loop", "activity ledger ready"} {
		if !bytes.Contains(content, []byte(want)) {
			t.Fatalf("dev log missing %q:\n%s", want, content)
		}
	}
}

func TestWatchConfigForwardsReloadedRuntimeConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	writeConfig(t, cfgPath, "[ui]\naccent_color = \"62\"\n")

	sent := make(chan tea.Msg, 4)
	prog := chanProgram{sent: sent}
	stop, err := watchConfig(context.Background(), cfgPath, prog, nil)
	if err != nil {
		t.Fatalf("watchConfig() error = %v", err)
	}
	defer stop()

	writeConfig(t, cfgPath, "[ui]\naccent_color = \"99\"\n")
	select {
	case msg := <-sent:
		want := tui.ConfigChanged(toRuntimeConfig(mustLoad(t, cfgPath)))
		if msg != want {
			t.Fatalf("expected %#v, got %#v", want, msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected a config change message")
	}
}

func TestWatchConfigReloadsRelativePathAfterChdir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, "config.toml", "[ui]\nshow_item_ids = false\n")

	sent := make(chan tea.Msg, 4)
	stop, err := watchConfig(context.Background(), "config.toml", chanProgram{sent: sent}, nil)
	if err != nil {
		t.Fatalf("watchConfig() error = %v", err)
	}
	defer stop()

	// reloads must keep reading the watched file, not a cwd-relative one.
	t.Chdir(t.TempDir())
	writeConfig(t, filepath.Join(dir, "config.toml"), "[ui]\nshow_item_ids = true\n")
	select {
	case msg := <-sent:
		want := tui.ConfigChanged(toRuntimeConfig(mustLoad(t, filepath.Join(dir, "config.toml"))))
		if msg != want {
			t.Fatalf("expected %#v, got %#v", want, msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected a config change message")
	}
}

// chanProgram forwards Send calls to a channel.
type chanProgram struct {
	sent chan tea.Msg
}

func (p chanProgram) Run() (tea.Model, error) { return nil, nil }

func (p chanProgram) Send(msg tea.Msg) { p.sent <- msg }

func mustLoad(t *testing.T, path string) config.Config {
	t.Helper()
	cfg, err := config.Load(path, config.Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestToRuntimeConfigMapsUIAndKeys(t *testing.T) {
	cfg := config.Default()
	cfg.UI.AccentColor = "#112233"
	cfg.UI.ShowItemIDs = true
	cfg.Keys.CopyID = "c"
	got := toRuntimeConfig(cfg)
	if got.AccentColor != "#112233" || !got.ShowItemIDs || got.Keys.CopyID != "c" || got.Keys.Grab != "space" {
		t.Fatalf("unexpected runtime config %#v", got)
	}
}

func TestDevLogFilePath(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := findWorkspaceRoot(nested); got != root {
		t.Fatalf("findWorkspaceRoot() = %q, want %q", got, root)
	}
	t.Chdir(nested)

	abs := filepath.Join(t.TempDir(), "logs")
	day := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		dir, app string
		want     string
	}{
		{"", "my app", filepath.Join(".tavla", "log", "my-app-20260304.log")},
		{"logs", " a/b:c ", filepath.Join("logs", "a-b-c-20260304.log")},
		{abs, "", filepath.Join(abs, "tavla-20260304.log")},
	}
	for _, tc := range tests {
		got, err := devLogFilePath(tc.dir, tc.app, day)
		if err != nil {
			t.Fatalf("devLogFilePath(%q, %q) error = %v", tc.dir, tc.app, err)
		}
		// the cwd may resolve through symlinks, so match by suffix.
		if !strings.HasSuffix(got, tc.want) {
			t.Fatalf("devLogFilePath(%q, %q) = %q, want %q", tc.dir, tc.app, got, tc.want)
		}
	}
}

func TestRuntimeLoggerMutesConsole(t *testing.T) {
	var stderr bytes.Buffer
	logger, err := newRuntimeLogger(&stderr, "tavla", false, config.Default().Logging, time.Now)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.Info("visible")
	logger.MuteConsole(true)
	logger.Info("hidden")
	if !strings.Contains(stderr.String(), "visible") || strings.Contains(stderr.String(), "hidden") {
		t.Fatalf("unexpected console output %q", stderr.String())
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}
	if logger.Library() == nil {
		t.Fatal("expected a discard library logger")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestRuntimeLoggerMutedConsoleKeepsDevFile(t *testing.T) {
	cfg := config.Default().Logging
	cfg.DevFile.Enabled = true
	cfg.DevFile.Dir = t.TempDir()
	var stderr bytes.Buffer
	logger, err := newRuntimeLogger(&stderr, "tavla", true, cfg, time.Now)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.MuteConsole(true)
	logger.Warn("board busy", "item_id", "item-1")
	logger.Library().Info("from library")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected muted console, got %q", stderr.String())
	}
	content, err := os.ReadFile(logger.DevLogPath())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"board busy", "item_id=item-1", "from library"} {
		if !bytes.Contains(content, []byte(want)) {
			t.Fatalf("dev log missing %q:\n%s", want, content)
		}
	}
}
