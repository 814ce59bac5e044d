package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDevLogDir  = ".tavla/log"
	defaultDevLogStem = "tavla"
)

// logSink is one destination. Console sinks go quiet while the board owns
// the terminal.
type logSink struct {
	*charmLog.Logger
	console bool
}

// runtimeLogger writes CLI events to stderr and, in dev mode, to a rotating
// logfmt file.
type runtimeLogger struct {
	sinks   []logSink
	muted   bool
	devFile *lumberjack.Logger
	devLog  *charmLog.Logger
}

func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	l := &runtimeLogger{
		sinks: []logSink{{Logger: newSinkLogger(stderr, level, appName, charmLog.TextFormatter), console: true}},
	}
	if !devMode || !cfg.DevFile.Enabled {
		return l, nil
	}

	if now == nil {
		now = time.Now
	}
	file, err := openDevLog(cfg.DevFile, appName, now().UTC())
	if err != nil {
		return nil, err
	}
	l.devFile = file
	l.devLog = newSinkLogger(file, level, appName, charmLog.LogfmtFormatter)
	l.sinks = append(l.sinks, logSink{Logger: l.devLog})
	return l, nil
}

func newSinkLogger(w io.Writer, level charmLog.Level, prefix string, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// openDevLog prepares the day's dev log file behind a size-based rotator.
func openDevLog(cfg config.DevFileConfig, appName string, day time.Time) (*lumberjack.Logger, error) {
	path, err := devLogFilePath(cfg.Dir, appName, day)
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}

// DevLogPath is empty unless the dev file sink is open.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil || l.devFile == nil {
		return ""
	}
	return l.devFile.Filename
}

// Library is the logger handed to internal packages. Without a dev file it
// discards, so nothing reaches the terminal under the board.
func (l *runtimeLogger) Library() *charmLog.Logger {
	if l == nil || l.devLog == nil {
		return charmLog.New(io.Discard)
	}
	return l.devLog
}

func (l *runtimeLogger) Close() error {
	if l == nil || l.devFile == nil {
		return nil
	}
	return l.devFile.Close()
}

// MuteConsole stops or resumes stderr output.
func (l *runtimeLogger) MuteConsole(muted bool) {
	if l != nil {
		l.muted = muted
	}
}

func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, s := range l.sinks {
		if s.console && l.muted {
			continue
		}
		s.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.log(charmLog.DebugLevel, msg, keyvals...)
}

func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.log(charmLog.InfoLevel, msg, keyvals...)
}

func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.log(charmLog.WarnLevel, msg, keyvals...)
}

func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.log(charmLog.ErrorLevel, msg, keyvals...)
}

// devLogFilePath names the dev log for day. A relative dir hangs off the
// enclosing workspace so runs from subpackages share one log.
func devLogFilePath(dir, appName string, day time.Time) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultDevLogDir
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		dir = filepath.Join(findWorkspaceRoot(cwd), dir)
	}
	name := logFileStem(appName) + "-" + day.Format("20060102") + ".log"
	return filepath.Join(filepath.Clean(dir), name), nil
}

// findWorkspaceRoot walks up from start to the first dir holding go.mod or
// .git. It returns start when no ancestor qualifies.
func findWorkspaceRoot(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	for dir := start; ; dir = filepath.Dir(dir) {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		if filepath.Dir(dir) == dir {
			return start
		}
	}
}

func logFileStem(appName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(appName))
	if stem = strings.Trim(stem, "-"); stem == "" {
		return defaultDevLogStem
	}
	return stem
}
