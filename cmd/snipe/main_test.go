package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestApp() *cli.App {
	return &cli.App{
		Name: "snipe",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: "."},
			&cli.StringFlag{Name: "socket"},
			&cli.BoolFlag{Name: "watch"},
		},
		Commands: []*cli.Command{
			{Name: "refresh", Action: refreshCommand},
		},
	}
}

func TestRefreshFailsClearlyWithoutRunningServer(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp()

	err := app.Run([]string{"snipe", "--root", dir, "--socket", filepath.Join(dir, "nonexistent.sock"), "refresh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snipe server running")
}

func TestLoadConfigAppliesRootAndSocketFlags(t *testing.T) {
	dir := t.TempDir()
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root"},
			&cli.StringFlag{Name: "socket"},
			&cli.BoolFlag{Name: "watch"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			require.NoError(t, err)
			assert.Equal(t, dir, cfg.Project.Root)
			assert.Equal(t, "/tmp/custom.sock", cfg.Server.SocketPath)
			assert.False(t, cfg.Index.WatchMode)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"snipe", "--root", dir, "--socket", "/tmp/custom.sock", "--watch=false"}))
}
