package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("/data")

	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, filepath.Join("/data", "hooks"), cfg.HooksDir)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.Tray)
	assert.Equal(t, 30*time.Second, cfg.HookTimeout())
	assert.Equal(t, filepath.Join("/data", "pinchsign.db"), cfg.DBPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, Default(dir), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := `
camera_id: 2
fps: 15
addr: 127.0.0.1:9090
tray: false
detector:
  python: /usr/bin/python3
hooks:
  register-upload:
    baseUrl: http://example.test/user
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.CameraID)
	assert.Equal(t, 15, cfg.FPS)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.False(t, cfg.Tray)
	assert.Equal(t, "/usr/bin/python3", cfg.Detector.Python)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 30000, cfg.HookTimeoutMs, "unset keys keep defaults")
	assert.Equal(t, "http://example.test/user", cfg.HookConfig("register-upload")["baseUrl"])
	assert.Nil(t, cfg.HookConfig("missing"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "fps: [1"},
		{"zero fps", "fps: 0"},
		{"negative timeout", "hook_timeout_ms: -1"},
		{"empty addr", `addr: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, DefaultFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := Load("", dir)
			assert.Error(t, err)
		})
	}
}
