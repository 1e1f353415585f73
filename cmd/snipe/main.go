package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/snipe-lang/snipe/internal/server"
	"github.com/snipe-lang/snipe/internal/snipeconfig"
	"github.com/snipe-lang/snipe/internal/version"
)

// loadConfig resolves a Config for root, applying whatever CLI flags the
// caller passed. Grounded on the teacher's loadConfigWithOverrides.
func loadConfig(c *cli.Context) (*snipeconfig.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}

	cfg, err := snipeconfig.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var watchMode *bool
	if c.IsSet("watch") {
		v := c.Bool("watch")
		watchMode = &v
	}
	snipeconfig.ApplyOverrides(cfg, snipeconfig.Overrides{
		SocketPath: c.String("socket"),
		WatchMode:  watchMode,
	})
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:    "snipe",
		Usage:   "local cross-file semantic analysis for C and Python",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "repository root to analyze",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "socket",
				Usage: "Unix socket path (default: derived from root)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "enable the file watcher (overrides .snipe.kdl)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the analysis server for a repo root",
				Action: serveCommand,
			},
			{
				Name:   "refresh",
				Usage:  "run a one-shot full scan against a running server and exit",
				Action: refreshCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "snipe: %v\n", err)
		os.Exit(1)
	}
}

// serveCommand starts the Unix-socket server and, when enabled, the file
// watcher that keeps the repo graph current as files change. Grounded on
// the teacher's serverCommand (cmd/lci/main_server.go).
func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	socketPath := cfg.Server.SocketPath
	if socketPath == "" {
		socketPath = server.SocketPathForRoot(cfg.Project.Root)
	}
	fmt.Printf("snipe server listening on %s (root %s)\n", socketPath, cfg.Project.Root)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		fmt.Printf("received %v, shutting down\n", sig)
	case <-func() chan struct{} {
		ch := make(chan struct{})
		go func() {
			srv.Wait()
			close(ch)
		}()
		return ch
	}():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	fmt.Println("snipe server shut down cleanly")
	return nil
}

// refreshCommand asks an already-running server for a full rescan. It does
// not start a server itself — that is serve's job.
func refreshCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	socketPath := cfg.Server.SocketPath
	if socketPath == "" {
		socketPath = server.SocketPathForRoot(cfg.Project.Root)
	}
	client := server.NewClientWithSocket(socketPath)
	if !client.IsServerRunning() {
		return fmt.Errorf("no snipe server running for root %s (run 'snipe serve' first)", cfg.Project.Root)
	}

	resp, err := client.Refresh(cfg.Project.Root)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	fmt.Printf("refreshed %s: %d symbols\n", cfg.Project.Root, resp.SymbolCount)
	return nil
}
