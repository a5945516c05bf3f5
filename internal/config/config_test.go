package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "chromatic", cfg.Logger.ServiceName)
	assert.Equal(t, "green", cfg.Logger.Colors.Info)
	assert.Equal(t, 800, cfg.Viewport.Width)
	assert.Equal(t, 600, cfg.Viewport.Height)
	assert.Equal(t, 100.0, cfg.Scroll.Step)
	assert.Equal(t, 5.0, cfg.Scroll.WheelFactor)
	assert.Equal(t, 40.0, cfg.Scroll.ScrollbarUnit)
	assert.Equal(t, 10*time.Millisecond, cfg.Scroll.Throttle)
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout)
	assert.Equal(t, 4, cfg.Network.StylesheetConcurrency)
	assert.Empty(t, cfg.Fonts.Regular)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chromatic.yaml")
	content := `
viewport:
  width: 1024
  height: 768
scroll:
  throttle: 25ms
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Viewport.Width)
	assert.Equal(t, 768, cfg.Viewport.Height)
	assert.Equal(t, 25*time.Millisecond, cfg.Scroll.Throttle)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 100.0, cfg.Scroll.Step, "unset keys keep their defaults")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CHROMATIC_VIEWPORT_WIDTH", "640")
	t.Setenv("CHROMATIC_NETWORK_USER_AGENT", "test-agent")

	path := filepath.Join(t.TempDir(), "chromatic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  width: 1024\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Viewport.Width)
	assert.Equal(t, "test-agent", cfg.Network.UserAgent)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Viewport.Width)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Viewport.Width = 0 }},
		{"narrower than margins", func(c *Config) { c.Viewport.Width = 20 }},
		{"zero height", func(c *Config) { c.Viewport.Height = 0 }},
		{"zero step", func(c *Config) { c.Scroll.Step = 0 }},
		{"negative throttle", func(c *Config) { c.Scroll.Throttle = -time.Millisecond }},
		{"no stylesheet workers", func(c *Config) { c.Network.StylesheetConcurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
