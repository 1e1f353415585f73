package snipeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutKDLFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Index.WatchMode)
	assert.Equal(t, 300, cfg.Index.WatchDebounceMs)
	assert.NotEmpty(t, cfg.Index.Exclude)
}

func TestLoadAppliesKDLOverrides(t *testing.T) {
	dir := t.TempDir()
	kdl := `
project {
    root "."
}
index {
    watch_mode false
    watch_debounce_ms 500
    respect_gitignore false
}
exclude {
    "**/vendor/**"
    "**/testdata/**"
}
server {
    socket_path "/tmp/custom.sock"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".snipe.kdl"), []byte(kdl), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.False(t, cfg.Index.WatchMode)
	assert.Equal(t, 500, cfg.Index.WatchDebounceMs)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.Equal(t, []string{"**/vendor/**", "**/testdata/**"}, cfg.Index.Exclude)
	assert.Equal(t, "/tmp/custom.sock", cfg.Server.SocketPath)
}

func TestApplyOverridesTakesPrecedenceOverKDL(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	watchOff := false
	ApplyOverrides(cfg, Overrides{
		SocketPath: "/tmp/override.sock",
		WatchMode:  &watchOff,
	})

	assert.Equal(t, "/tmp/override.sock", cfg.Server.SocketPath)
	assert.False(t, cfg.Index.WatchMode)
}

func TestLoadRejectsMalformedKDL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".snipe.kdl"), []byte("index { ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
