// Package config loads the cobra tool settings.
//
// Settings come from three layers, later ones winning:
//
//  1. Defaults.
//  2. A YAML file: cobra.yaml in the working directory, or an explicit path.
//  3. Environment variables (COBRA_LOG_LEVEL, COBRA_LOG_FORMAT,
//     COBRA_LOG_FILE, COBRAPATH, COBRA_HISTORY, COBRA_MAX_DEPTH, NO_COLOR).
//
// Command-line flags are applied by the caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "cobra.yaml"

type Config struct {
	LogLevel     string   `yaml:"log_level"`
	LogFormat    string   `yaml:"log_format"`
	LogFile      string   `yaml:"log_file"`
	ModulePath   []string `yaml:"module_path"`
	HistoryFile  string   `yaml:"history_file"`
	MaxCallDepth int      `yaml:"max_call_depth"`
	Color        bool     `yaml:"color"`
}

func Default() Config {
	hist := ".cobra_history"
	if home, err := os.UserHomeDir(); err == nil {
		hist = filepath.Join(home, hist)
	}
	return Config{
		LogLevel:     "NONE",
		LogFormat:    "text",
		HistoryFile:  hist,
		MaxCallDepth: 1000,
		Color:        true,
	}
}

// Load reads path (or DefaultFile when path is empty) over the defaults and
// then applies the environment. A missing default file is fine; a missing
// explicit file is an error.
func Load(path string) (Config, error) {
	c := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return c, fmt.Errorf("config: %w", err)
	}
	c.ApplyEnv()
	return c, c.Validate()
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	c.LogLevel = env.Str("COBRA_LOG_LEVEL", c.LogLevel)
	c.LogFormat = env.Str("COBRA_LOG_FORMAT", c.LogFormat)
	c.LogFile = env.Str("COBRA_LOG_FILE", c.LogFile)
	c.HistoryFile = env.Str("COBRA_HISTORY", c.HistoryFile)
	c.MaxCallDepth = env.Int("COBRA_MAX_DEPTH", c.MaxCallDepth)
	if p := env.Str("COBRAPATH"); p != "" {
		c.ModulePath = append(c.ModulePath, filepath.SplitList(p)...)
	}
	if env.Has("NO_COLOR") {
		c.Color = false
	}
}

func (c Config) Validate() error {
	if _, _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q (want text or json)", c.LogFormat)
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("config: max_call_depth must not be negative")
	}
	return nil
}

// ParseLevel maps a level name to a slog level. off is true for NONE.
func ParseLevel(name string) (level slog.Level, off bool, err error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "NONE", "OFF":
		return 0, true, nil
	case "CRITICAL", "ERROR":
		return slog.LevelError, false, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, false, nil
	case "INFO":
		return slog.LevelInfo, false, nil
	case "DEBUG":
		return slog.LevelDebug, false, nil
	}
	return 0, false, fmt.Errorf("config: unknown log level %q", name)
}

// Logger builds the logger described by c. Output goes to LogFile when set,
// else to fallback. The returned closer releases the log file.
func (c Config) Logger(fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, off, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if off {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}
	w, closer := fallback, io.Closer(io.NopCloser(nil))
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		w, closer = f, f
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closer, nil
}
