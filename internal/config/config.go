package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	UI       UIConfig       `toml:"ui"`
	Activity ActivityConfig `toml:"activity"`
	Keys     KeyConfig      `toml:"keys"`
	Watch    WatchConfig    `toml:"watch"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the rotating logfmt sink used in dev mode.
type DevFileConfig struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type BoardConfig struct {
	ActiveTitle   string `toml:"active_title"`
	FinishedTitle string `toml:"finished_title"`
}

type UIConfig struct {
	AccentColor string `toml:"accent_color"`
	MutedColor  string `toml:"muted_color"`
	MarkerColor string `toml:"marker_color"`
	ShowItemIDs bool   `toml:"show_item_ids"`
}

type ActivityConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

type KeyConfig struct {
	ActivityLog string `toml:"activity_log"`
	ItemInfo    string `toml:"item_info"`
	CopyID      string `toml:"copy_id"`
	Grab        string `toml:"grab"`
}

type WatchConfig struct {
	Config bool `toml:"config"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled:    true,
				Dir:        ".tavla/log",
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 14,
			},
		},
		Board: BoardConfig{
			ActiveTitle:   "ACTIVE PROJECTS",
			FinishedTitle: "FINISHED PROJECTS",
		},
		UI: UIConfig{
			AccentColor: "62",
			MutedColor:  "241",
			MarkerColor: "212",
			ShowItemIDs: false,
		},
		Activity: ActivityConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
		Keys: KeyConfig{
			ActivityLog: "g",
			ItemInfo:    "i",
			CopyID:      "y",
			Grab:        "space",
		},
		Watch: WatchConfig{
			Config: true,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// colorPattern accepts ANSI indexes (0-255) and #rgb / #rrggbb hex colors.
var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

func (c Config) Validate() error {
	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.MaxSizeMB < 0 {
		return errors.New("logging.dev_file.max_size_mb must be >= 0")
	}
	if c.Logging.DevFile.MaxBackups < 0 {
		return errors.New("logging.dev_file.max_backups must be >= 0")
	}
	if c.Logging.DevFile.MaxAgeDays < 0 {
		return errors.New("logging.dev_file.max_age_days must be >= 0")
	}

	if strings.TrimSpace(c.Board.ActiveTitle) == "" {
		return errors.New("board.active_title is required")
	}
	if strings.TrimSpace(c.Board.FinishedTitle) == "" {
		return errors.New("board.finished_title is required")
	}

	for name, value := range map[string]string{
		"ui.accent_color": c.UI.AccentColor,
		"ui.muted_color":  c.UI.MutedColor,
		"ui.marker_color": c.UI.MarkerColor,
	} {
		if !validColor(value) {
			return fmt.Errorf("invalid %s: %q", name, value)
		}
	}

	if c.Activity.MaxEntries < 0 {
		return errors.New("activity.max_entries must be >= 0")
	}

	seen := map[string]string{}
	for name, binding := range map[string]string{
		"keys.activity_log": c.Keys.ActivityLog,
		"keys.item_info":    c.Keys.ItemInfo,
		"keys.copy_id":      c.Keys.CopyID,
		"keys.grab":         c.Keys.Grab,
	} {
		binding = strings.TrimSpace(binding)
		if binding == "" {
			continue
		}
		if other, ok := seen[binding]; ok {
			return fmt.Errorf("%s duplicates %s: %q", name, other, binding)
		}
		seen[binding] = name
	}
	return nil
}

func validColor(value string) bool {
	value = strings.TrimSpace(value)
	if !colorPattern.MatchString(value) {
		return false
	}
	if strings.HasPrefix(value, "#") {
		return true
	}
	n, err := strconv.Atoi(value)
	return err == nil && n <= 255
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
