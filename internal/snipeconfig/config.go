// Package snipeconfig loads the project-level configuration an instance of
// the analysis engine runs under: where the repo root is, what the full
// scan should skip, whether the file watcher is active, and which Unix
// socket the server listens on. Grounded on the teacher's own
// internal/config package and its ".lci.kdl" file, adapted to the smaller
// surface this engine actually needs.
package snipeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Config is the full set of knobs a running instance needs.
type Config struct {
	Project Project
	Index   Index
	Server  Server
}

// Project describes the repository being analyzed.
type Project struct {
	Root string
}

// Index controls the behavior of a full scan and the file watcher.
type Index struct {
	MaxFileSize      int64
	Exclude          []string
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
}

// Server configures the transport that exposes analyze/refresh/etc.
type Server struct {
	SocketPath string
}

// defaultConfig returns the built-in defaults before any .snipe.kdl or CLI
// override is applied.
func defaultConfig(root string) *Config {
	return &Config{
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      5 * 1024 * 1024,
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  300,
			Exclude: []string{
				"**/.git/**",
				"**/node_modules/**",
				"**/__pycache__/**",
				"**/*.pyc",
				"**/build/**",
				"**/dist/**",
			},
		},
		// An empty SocketPath means the per-root path from
		// server.SocketPathForRoot.
		Server: Server{},
	}
}

// Load builds a Config for the repo at root: defaults, overridden by a
// ".snipe.kdl" file in root if one exists. It never returns an error for a
// missing config file — only a malformed one that exists is an error,
// mirroring the teacher's LoadKDL ("no KDL config found, use defaults").
func Load(root string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	cfg := defaultConfig(absRoot)

	kdlPath := filepath.Join(absRoot, ".snipe.kdl")
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", kdlPath, err)
	}

	if err := applyKDL(cfg, string(content)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", kdlPath, err)
	}
	return cfg, nil
}

// Overrides holds the subset of Config fields a CLI invocation may set
// explicitly; a zero value for any field means "leave the loaded config
// alone". Grounded on loadConfigWithOverrides in the teacher's
// cmd/lci/main.go.
type Overrides struct {
	Root             string
	SocketPath       string
	WatchMode        *bool
	RespectGitignore *bool
}

// ApplyOverrides merges CLI flags onto a loaded Config, CLI taking
// precedence over both defaults and the KDL file.
func ApplyOverrides(cfg *Config, o Overrides) {
	if o.Root != "" {
		cfg.Project.Root = o.Root
	}
	if o.SocketPath != "" {
		cfg.Server.SocketPath = o.SocketPath
	}
	if o.WatchMode != nil {
		cfg.Index.WatchMode = *o.WatchMode
	}
	if o.RespectGitignore != nil {
		cfg.Index.RespectGitignore = *o.RespectGitignore
	}
}

func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						if filepath.IsAbs(s) {
							cfg.Project.Root = s
						} else {
							cfg.Project.Root = filepath.Join(cfg.Project.Root, s)
						}
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.WatchDebounceMs = v
					}
				}
			}
		case "exclude":
			if patterns := collectStringArgs(n); len(patterns) > 0 {
				cfg.Index.Exclude = patterns
			}
		case "server":
			for _, cn := range n.Children {
				if nodeName(cn) == "socket_path" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Server.SocketPath = s
					}
				}
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
