// Package config loads the pinchsign runtime configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/pinchsign/internal/capture"
)

// DefaultFile is the config file name inside the data directory.
const DefaultFile = "config.yaml"

// Detector selects the hand landmark service.
type Detector struct {
	Python string `yaml:"python"`
	Script string `yaml:"script"`
	// Mock replaces the landmark service with a detector that sees no hands.
	Mock bool `yaml:"mock"`
}

// Config is the runtime configuration. Gesture and painter constants are
// not configurable.
type Config struct {
	CameraID      int      `yaml:"camera_id"`
	FPS           int      `yaml:"fps"`
	Video         string   `yaml:"video"`
	Addr          string   `yaml:"addr"`
	DataDir       string   `yaml:"data_dir"`
	HooksDir      string   `yaml:"hooks_dir"`
	HookTimeoutMs int      `yaml:"hook_timeout_ms"`
	StaticDir     string   `yaml:"static_dir"`
	Tray          bool     `yaml:"tray"`
	Detector      Detector `yaml:"detector"`

	// Hooks holds per-hook configuration passed through to the hook
	// process, keyed by hook name.
	Hooks map[string]map[string]any `yaml:"hooks"`
}

// Default returns the built-in configuration rooted at dataDir. An empty
// dataDir resolves to ~/.pinchsign.
func Default(dataDir string) Config {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return Config{
		FPS:           capture.DefaultFPS,
		Addr:          ":8080",
		DataDir:       dataDir,
		HooksDir:      filepath.Join(dataDir, "hooks"),
		HookTimeoutMs: 30000,
		Tray:          true,
	}
}

// DefaultDataDir returns ~/.pinchsign, or .pinchsign when the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pinchsign"
	}
	return filepath.Join(home, ".pinchsign")
}

// Load reads path over the defaults for dataDir. A missing file is not an
// error.
func Load(path, dataDir string) (Config, error) {
	cfg := Default(dataDir)
	if path == "" {
		path = filepath.Join(cfg.DataDir, DefaultFile)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.HookTimeoutMs <= 0 {
		return fmt.Errorf("hook_timeout_ms must be positive, got %d", c.HookTimeoutMs)
	}
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	return nil
}

// HookTimeout returns the hook execution timeout.
func (c Config) HookTimeout() time.Duration {
	return time.Duration(c.HookTimeoutMs) * time.Millisecond
}

// DBPath returns the signature archive location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "pinchsign.db")
}

// ExportDir returns the directory hook hand-offs are written to.
func (c Config) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// HookConfig returns the configuration block for the named hook, or nil.
func (c Config) HookConfig(name string) map[string]any {
	return c.Hooks[name]
}
