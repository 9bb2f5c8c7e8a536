package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the optional configuration file. Flags override it.
type Config struct {
	Limits struct {
		Steps int `yaml:"steps"`
		Depth int `yaml:"depth"`
	} `yaml:"limits"`
	Store struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"store"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func defaultConfig() Config {
	var c Config
	c.Store.Driver = "sqlite"
	c.Store.Path = "wordplay.db"
	c.Log.Level = "warn"
	return c
}

// loadConfig reads path over the defaults. A missing file is not an error
// unless required is set.
func loadConfig(path string, required bool) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
