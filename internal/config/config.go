// Package config loads tool configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all xmlclean configuration.
type Config struct {
	TargetTags []string `toml:"target_tags"`

	Output  OutputConfig  `toml:"output"`
	Archive ArchiveConfig `toml:"archive"`
	Watch   WatchConfig   `toml:"watch"`
	Log     LogConfig     `toml:"log"`
}

type OutputConfig struct {
	Dir    string `toml:"dir"`
	Suffix string `toml:"suffix"`
}

type ArchiveConfig struct {
	Prefix string `toml:"prefix"`
}

type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Debounce returns the watch settle time as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TargetTags: []string{"Code", "Description"},
		Output: OutputConfig{
			Dir:    ".",
			Suffix: "_cleaned",
		},
		Archive: ArchiveConfig{
			Prefix: "gerflor_cleaned",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads config from path, or from the standard locations when path is
// empty, falling back to defaults when no file exists.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else {
		for _, p := range configPaths() {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	if len(cfg.TargetTags) == 0 {
		return cfg, fmt.Errorf("config: target_tags must not be empty")
	}

	cfg.Output.Dir = expandHome(cfg.Output.Dir)

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "xmlclean", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "xmlclean", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
