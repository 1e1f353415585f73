// Package snipelog is Snipe's ambient debug/trace logger: a lightweight,
// mutex-guarded writer that discards everything unless explicitly
// enabled. The teacher's own codebase never imports a structured logging
// library (no zerolog/logrus/slog anywhere in it), so this mirrors its
// internal/debug package rather than reaching for something heavier.
package snipelog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	out     io.Writer // nil means discard
	enabled bool
)

func init() {
	if os.Getenv("SNIPE_DEBUG") == "1" {
		Enable(os.Stderr)
	}
}

// Enable turns logging on, writing to w. Passing a nil w disables logging
// again (equivalent to Disable).
func Enable(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	enabled = w != nil
}

// Disable turns logging off; Debugf calls become no-ops.
func Disable() {
	Enable(nil)
}

// Enabled reports whether logging is currently active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Debugf writes a single timestamped line if logging is enabled. It is
// always safe to call — with logging disabled it costs one mutex lock and
// nothing else.
func Debugf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || out == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] "+format+"\n", append([]any{ts}, args...)...)
}
