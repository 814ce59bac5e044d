// Package platform resolves where tavla keeps its config file and logs.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultAppName = "tavla"
	configFileName = "config.toml"
)

var (
	// ErrNoAppName is returned when the app name is blank.
	ErrNoAppName = errors.New("empty app name")
	// ErrNoBaseDir is returned when a platform base directory is unknown.
	ErrNoBaseDir = errors.New("empty base dir")
)

// Paths holds the resolved per-app locations.
type Paths struct {
	ConfigPath string
	DataDir    string
	LogDir     string
}

// Options selects the app name and the dev variant.
type Options struct {
	AppName string
	DevMode bool
}

// BaseDirs are the per-user roots an app directory is joined onto.
type BaseDirs struct {
	Home   string
	Config string
}

// DefaultPaths returns the locations for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the current user and OS. Dev mode
// appends "-dev" to the app name so a development build never reads the real
// config.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user home dir: %w", err)
	}
	env := map[string]string{}
	for _, name := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_STATE_HOME", "APPDATA", "LOCALAPPDATA"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			env[name] = v
		}
	}
	return Resolve(runtime.GOOS, env, BaseDirs{Home: home, Config: configDir}, AppDirName(opts))
}

// AppDirName is the directory name used under each base dir.
func AppDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = defaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

// Resolve maps one OS, environment and base dirs onto app paths.
//
//	linux:   $XDG_CONFIG_HOME, $XDG_DATA_HOME, $XDG_STATE_HOME/<app>/log
//	windows: %APPDATA%, %LOCALAPPDATA%, %LOCALAPPDATA%/<app>/log
//	darwin:  the user config dir for both, ~/Library/Logs/<app>
func Resolve(goos string, env map[string]string, base BaseDirs, appName string) (Paths, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, ErrNoAppName
	}
	if base.Config == "" || base.Home == "" {
		return Paths{}, ErrNoBaseDir
	}
	lookup := func(name, fallback string) string {
		if v := env[name]; v != "" {
			return v
		}
		return fallback
	}

	var configRoot, dataRoot, logDir string
	switch goos {
	case "linux":
		configRoot = lookup("XDG_CONFIG_HOME", base.Config)
		dataRoot = lookup("XDG_DATA_HOME", filepath.Join(base.Home, ".local", "share"))
		logDir = filepath.Join(lookup("XDG_STATE_HOME", filepath.Join(base.Home, ".local", "state")), appName, "log")
	case "windows":
		configRoot = lookup("APPDATA", base.Config)
		dataRoot = lookup("LOCALAPPDATA", base.Config)
		logDir = filepath.Join(dataRoot, appName, "log")
	case "darwin":
		configRoot = base.Config
		dataRoot = base.Config
		logDir = filepath.Join(base.Home, "Library", "Logs", appName)
	default:
		configRoot = base.Config
		dataRoot = base.Config
		logDir = filepath.Join(dataRoot, appName, "log")
	}

	return Paths{
		ConfigPath: filepath.Join(configRoot, appName, configFileName),
		DataDir:    filepath.Join(dataRoot, appName),
		LogDir:     logDir,
	}, nil
}
