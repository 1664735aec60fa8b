package vmaxtui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vmaxtui.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 250ms
render_width: 640
render_height: 480
engine_binary: /opt/bella/bella_cli
debug: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 640, cfg.RenderWidth)
	assert.Equal(t, 480, cfg.RenderHeight)
	assert.Equal(t, "/opt/bella/bella_cli", cfg.EngineBinary)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `render_width: 1024`))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.RenderWidth)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, 200, cfg.RenderHeight)
	assert.Equal(t, "bella_cli", cfg.EngineBinary)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	// Returned defaults are still usable.
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigBadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `poll_interval: soon`))
	assert.Error(t, err)
}

func TestLoadConfigNonPositiveInterval(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `poll_interval: -1s`))
	assert.Error(t, err)
}

func TestLoadConfigUndecodable(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "\t{not yaml"))
	assert.Error(t, err)
}
