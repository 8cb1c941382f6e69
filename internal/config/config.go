// Package config resolves, parses, validates, and defaults the daemon
// configuration. The materialized Config is immutable for the process
// lifetime and passed explicitly into the engine.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"swaybard/internal/layout"
)

// Config is the fully materialized daemon configuration.
type Config struct {
	// DefaultLayout is the mode applied to workspaces on first contact:
	// "manual", "spiral", or "stack-main".
	DefaultLayout string `yaml:"default_layout"`

	// StackMainSize is the main-area width percentage for stack-main
	// workspaces created from the default layout.
	StackMainSize int `yaml:"stack_main_size"`

	// StackMainStackLayout arranges the stack area: tabbed, tiled, stacked.
	StackMainStackLayout string `yaml:"stack_main_stack_layout"`

	// WorkspaceRenaming renames workspaces after their focused application.
	WorkspaceRenaming bool `yaml:"workspace_renaming"`

	// OnWindowFocus is a sway command run against a window gaining focus.
	OnWindowFocus string `yaml:"on_window_focus"`

	// OnWindowFocusLeave is a sway command run against the window that had
	// focus before.
	OnWindowFocusLeave string `yaml:"on_window_focus_leave"`

	// OnExit is a sway command run once when the daemon terminates.
	OnExit string `yaml:"on_exit"`

	// SocketPath overrides the control socket location.
	SocketPath string `yaml:"socket_path"`

	// LogLevel selects the logging verbosity.
	LogLevel string `yaml:"log_level"`
}

// Default returns the canonical configuration used when no file is present.
func Default() Config {
	return Config{
		DefaultLayout:        "manual",
		StackMainSize:        70,
		StackMainStackLayout: string(layout.StackTiled),
		LogLevel:             "info",
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// yields the defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects out-of-range and unrecognized settings.
func (c Config) Validate() error {
	if _, err := c.DefaultMode(); err != nil {
		return err
	}
	if c.StackMainSize < 0 || c.StackMainSize > 100 {
		return fmt.Errorf("stack_main_size %d out of range 0..100", c.StackMainSize)
	}
	if _, err := layout.ParseStackLayout(c.StackMainStackLayout); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unrecognized log_level %q", c.LogLevel)
	}
}

// DefaultMode materializes the default layout mode for new workspaces.
func (c Config) DefaultMode() (layout.Mode, error) {
	switch c.DefaultLayout {
	case "manual":
		return layout.ManualMode(), nil
	case "spiral":
		return layout.SpiralMode(), nil
	case "stack-main":
		stack, err := layout.ParseStackLayout(c.StackMainStackLayout)
		if err != nil {
			return layout.Mode{}, err
		}
		return layout.StackMainMode(c.StackMainSize, stack), nil
	default:
		return layout.Mode{}, errors.New("unrecognized layout")
	}
}
