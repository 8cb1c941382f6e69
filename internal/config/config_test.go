package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"swaybard/internal/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "manual", cfg.DefaultLayout)
	require.Equal(t, 70, cfg.StackMainSize)
	require.Equal(t, string(layout.StackTiled), cfg.StackMainStackLayout)
	require.False(t, cfg.WorkspaceRenaming)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
default_layout: stack-main
stack_main_size: 60
workspace_renaming: true
on_window_focus: opacity 1
on_exit: exec pkill -f helper
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "stack-main", cfg.DefaultLayout)
	require.Equal(t, 60, cfg.StackMainSize)
	// Untouched keys keep their defaults.
	require.Equal(t, string(layout.StackTiled), cfg.StackMainStackLayout)
	require.True(t, cfg.WorkspaceRenaming)
	require.Equal(t, "opacity 1", cfg.OnWindowFocus)
	require.Equal(t, "exec pkill -f helper", cfg.OnExit)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "default_layout: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown layout", func(c *Config) { c.DefaultLayout = "grid" }},
		{"size below range", func(c *Config) { c.StackMainSize = -5 }},
		{"size above range", func(c *Config) { c.StackMainSize = 120 }},
		{"unknown stack layout", func(c *Config) { c.StackMainStackLayout = "carousel" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultMode(t *testing.T) {
	t.Parallel()

	cfg := Default()
	mode, err := cfg.DefaultMode()
	require.NoError(t, err)
	require.Equal(t, layout.Manual, mode.Kind)

	cfg.DefaultLayout = "spiral"
	mode, err = cfg.DefaultMode()
	require.NoError(t, err)
	require.Equal(t, layout.Spiral, mode.Kind)

	cfg.DefaultLayout = "stack-main"
	cfg.StackMainSize = 55
	cfg.StackMainStackLayout = "tabbed"
	mode, err = cfg.DefaultMode()
	require.NoError(t, err)
	require.True(t, mode.Equal(layout.StackMainMode(55, layout.StackTabbed)))
}
