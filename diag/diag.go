// Package diag is the runtime's stderr diagnostics sink: queue
// underflow regenerating a permutation, a socket bind retry, a
// malicious-check failure in should_abort=false mode, and anything
// else worth recording without aborting the process. It wraps
// log/slog rather than introducing a third-party logging dependency —
// no example repo in the retrieval pack pulls one in, and slog is the
// standard structured logger as of the Go 1.23 toolchain this module
// targets.
package diag

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
}

// SetDefault replaces the package-wide logger, e.g. so a host process
// can redirect diagnostics to its own sink instead of stderr.
func SetDefault(l *slog.Logger) { root.Store(l) }

// Root returns the current package-wide logger.
func Root() *slog.Logger { return root.Load() }

// Warn logs a recoverable runtime condition tagged with the party rank
// and operation name spec.md's stderr-diagnostics contract calls for.
func Warn(rank int, op, msg string, args ...any) {
	Root().Warn(msg, append([]any{"op", op, "rank", rank}, args...)...)
}

// Error logs a terminal condition the caller is about to return as an
// error, with the same rank/op tagging as Warn.
func Error(rank int, op, msg string, args ...any) {
	Root().Error(msg, append([]any{"op", op, "rank", rank}, args...)...)
}
