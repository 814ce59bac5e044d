package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/adapters/storage/sqlite"
	"github.com/evanschultz/tavla/internal/app"
	"github.com/evanschultz/tavla/internal/config"
	"github.com/evanschultz/tavla/internal/platform"
	"github.com/evanschultz/tavla/internal/store"
	"github.com/evanschultz/tavla/internal/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = ""
)

// program is the slice of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// programFactory builds the terminal program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	appName    string
	devMode    bool
}

// run builds the command tree and executes it through fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{appName: "tavla", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("TAVLA_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:   "tavla",
		Short: "A two-column project board for the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")
	root.AddCommand(newPathsCommand(opts), newPaletteCommand(opts))

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
		fang.WithNotifySignal(os.Interrupt),
	)
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", resolveConfigPath(opts, paths))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

func resolvePaths(opts *rootOptions) (platform.Paths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return platform.Paths{}, fmt.Errorf("resolve paths: %w", err)
	}
	return paths, nil
}

// resolveConfigPath applies --config, then TAVLA_CONFIG, then the platform default.
func resolveConfigPath(opts *rootOptions, paths platform.Paths) string {
	if p := strings.TrimSpace(opts.configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); p != "" {
		return p
	}
	return paths.ConfigPath
}

// loadConfig resolves and loads the config file for one command.
func loadConfig(opts *rootOptions) (config.Config, string, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return config.Config{}, "", err
	}
	configPath := resolveConfigPath(opts, paths)
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return config.Config{}, configPath, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return cfg, configPath, nil
}

// runBoard wires the store, activity ledger and terminal UI and runs the program loop.
func runBoard(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	cfg, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// the board owns the terminal; runtime events go to the dev file only.
	logger.MuteConsole(true)
	defer func() {
		logger.MuteConsole(false)
		if closeErr := logger.Close(); closeErr != nil {
			logger.Warn("close dev log failed", "err", closeErr)
		}
	}()
	libLogger := logger.Library()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Info("configuration loaded", "config_path", configPath, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store.Reset()
	store.Configure(store.WithLogger(libLogger))
	st := store.Default()

	tuiOpts := []tui.Option{
		tui.WithLogger(libLogger),
		tui.WithRuntimeConfig(toRuntimeConfig(cfg)),
		tui.WithColumnTitles(cfg.Board.ActiveTitle, cfg.Board.FinishedTitle),
	}
	if cfg.Activity.Enabled {
		ledger, err := sqlite.OpenInMemory(cfg.Activity.MaxEntries)
		if err != nil {
			logger.Error("activity ledger open failed", "err", err)
			return fmt.Errorf("open activity ledger: %w", err)
		}
		defer func() {
			if closeErr := ledger.Close(); closeErr != nil {
				logger.Warn("activity ledger close failed", "err", closeErr)
			}
		}()
		recorder := app.NewActivityRecorder(ctx, ledger, app.WithLogger(libLogger))
		recorder.Attach(st)
		tuiOpts = append(tuiOpts, tui.WithActivity(recorder))
		logger.Info("activity ledger ready", "max_entries", cfg.Activity.MaxEntries)
	}

	m, err := tui.NewModel(st, tuiOpts...)
	if err != nil {
		logger.Error("board setup failed", "err", err)
		return fmt.Errorf("build board: %w", err)
	}
	prog := programFactory(m)

	if cfg.Watch.Config {
		stop, err := watchConfig(ctx, configPath, prog, libLogger)
		if err != nil {
			logger.Warn("config watch disabled", "config_path", configPath, "err", err)
		} else {
			defer stop()
			logger.Info("watching config", "config_path", configPath)
		}
	}

	logger.Info("starting tui program loop")
	if _, err := prog.Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// watchConfig reloads the config file on change and forwards the UI section
// to the running program. The returned func stops the watcher and waits for
// its goroutine.
func watchConfig(ctx context.Context, configPath string, prog program, logger *charmLog.Logger) (func(), error) {
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	if err := config.EnsureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	watcher, err := config.NewWatcher(configPath, config.DefaultWatchDebounce, logger)
	if err != nil {
		return nil, err
	}
	watcher.Start()
	configPath = watcher.Path()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-watcher.Changes():
				cfg, err := config.Load(configPath, config.Default())
				if err != nil {
					logger.Warn("config reload failed", "config_path", configPath, "err", err)
					continue
				}
				logger.Info("config reloaded", "config_path", configPath)
				prog.Send(tui.ConfigChanged(toRuntimeConfig(cfg)))
			}
		}
	}()

	return func() {
		cancel()
		if err := watcher.Close(); err != nil {
			logger.Warn("config watcher close failed", "err", err)
		}
		wg.Wait()
	}, nil
}

// toRuntimeConfig maps the hot-reloadable config sections onto the UI.
func toRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		AccentColor: cfg.UI.AccentColor,
		MutedColor:  cfg.UI.MutedColor,
		MarkerColor: cfg.UI.MarkerColor,
		ShowItemIDs: cfg.UI.ShowItemIDs,
		Keys: tui.KeyConfig{
			ActivityLog: cfg.Keys.ActivityLog,
			ItemInfo:    cfg.Keys.ItemInfo,
			CopyID:      cfg.Keys.CopyID,
			Grab:        cfg.Keys.Grab,
		},
	}
}

// parseBoolEnv reads a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
