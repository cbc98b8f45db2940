package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Layout contains list layout behaviour and panel visibility.
type Layout struct {
	AutoContinue     bool   `toml:"auto_continue"`
	Advance          int    `toml:"advance"`
	GoKey            string `toml:"go_key"`
	SelectionMode    bool   `toml:"selection_mode"`
	ShowPlayingCues  bool   `toml:"show_playing_cues"`
	ShowDBMeters     bool   `toml:"show_db_meters"`
	ShowSeekSliders  bool   `toml:"show_seek_sliders"`
	ShowAccurateTime bool   `toml:"show_accurate_time"`
}

// OSC contains the remote control surface settings.
type OSC struct {
	Enabled      bool   `toml:"enabled"`
	ListenHost   string `toml:"listen_host"`
	ListenPort   int    `toml:"listen_port"`
	FeedbackHost string `toml:"feedback_host"` // Empty disables feedback
	FeedbackPort int    `toml:"feedback_port"`
	Prefix       string `toml:"prefix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for the cue player.
type Config struct {
	Layout  Layout  `toml:"layout"`
	OSC     OSC     `toml:"osc"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cueplay/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults; the returned bool reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cueplay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() {
	c.Layout.GoKey = strings.ToLower(strings.TrimSpace(c.Layout.GoKey))
	c.OSC.ListenHost = strings.TrimSpace(c.OSC.ListenHost)
	c.OSC.FeedbackHost = strings.TrimSpace(c.OSC.FeedbackHost)
	c.OSC.Prefix = strings.TrimSpace(c.OSC.Prefix)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// FeedbackEnabled reports whether update messages should be sent.
func (c *Config) FeedbackEnabled() bool {
	return c.OSC.Enabled && c.OSC.FeedbackHost != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
