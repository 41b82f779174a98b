package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"taskboard/internal/task"
	"taskboard/internal/view"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	appDir                = "taskboard"

	EnvConfig = "TASKBOARD_CONFIG"
	EnvDB     = "TASKBOARD_DB"
	EnvLog    = "TASKBOARD_LOG"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Edit    string `toml:"edit"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Search  string `toml:"search"`
	Filter  string `toml:"filter"`
	Sort    string `toml:"sort"`
	Theme   string `toml:"theme"`
}

type Config struct {
	DBPath        string   `toml:"db_path"`
	DefaultFilter string   `toml:"default_filter"`
	DefaultSort   string   `toml:"default_sort"`
	Categories    []string `toml:"categories"`
	LogPath       string   `toml:"log_path"`
	Keys          Keymap   `toml:"keys"`
}

// ResolveConfigPath honours TASKBOARD_CONFIG, then the user config dir.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return expandHome(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDir, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.withEnv(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogPath = expandHome(cfg.LogPath)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.withEnv(), nil
}

func (c Config) withEnv() Config {
	if p := strings.TrimSpace(os.Getenv(EnvDB)); p != "" {
		c.DBPath = expandHome(p)
	}
	if p := strings.TrimSpace(os.Getenv(EnvLog)); p != "" {
		c.LogPath = expandHome(p)
	}
	return c
}

func (c Config) Validate() error {
	if _, err := view.ParseSort(c.DefaultSort); err != nil {
		return err
	}
	if _, err := c.TaskCategories(); err != nil {
		return err
	}
	if c.DefaultFilter != "" && c.DefaultFilter != view.AllCategories {
		if _, err := task.ParseCategory(c.DefaultFilter); err != nil {
			return fmt.Errorf("default_filter: %w", err)
		}
	}
	return nil
}

// TaskCategories returns the configured subset, or every category when the
// list is empty.
func (c Config) TaskCategories() ([]task.Category, error) {
	if len(c.Categories) == 0 {
		return task.Categories, nil
	}
	out := make([]task.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		cat, err := task.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("categories: %w", err)
		}
		out = append(out, cat)
	}
	return out, nil
}

func (c Config) Query() view.Query {
	mode, _ := view.ParseSort(c.DefaultSort)
	filter := strings.ToLower(strings.TrimSpace(c.DefaultFilter))
	if filter == "" {
		filter = view.AllCategories
	}
	return view.Query{Category: filter, Sort: mode}
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(home, ".local", "share", appDir, DefaultDBName)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func Default() Config { return defaultConfig() }

func defaultConfig() Config {
	cats := make([]string, 0, len(task.Categories))
	for _, c := range task.Categories {
		cats = append(cats, string(c))
	}
	return Config{
		DBPath:        defaultDBPath(),
		DefaultFilter: view.AllCategories,
		DefaultSort:   string(view.SortNone),
		Categories:    cats,
		Keys: Keymap{
			Quit:    "q",
			Add:     "a",
			Up:      "k",
			Down:    "j",
			Toggle:  " ",
			Delete:  "d",
			Edit:    "e",
			Confirm: "enter",
			Cancel:  "esc",
			Search:  "/",
			Filter:  "c",
			Sort:    "s",
			Theme:   "t",
		},
	}
}
