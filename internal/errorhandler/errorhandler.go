// ABOUTME: Process-wide error reporting and panic recovery for the CLI entry points.
// ABOUTME: Errors go to the log and, when enabled, to stderr.

package errorhandler

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/777genius/audiodevice/internal/logging"
)

type handler struct {
	logToConsole    bool
	exitOnCritical  bool
	recoveryEnabled bool
	console         io.Writer
	exit            func(int)
}

var (
	mu sync.Mutex
	h  = &handler{logToConsole: true, recoveryEnabled: true, console: os.Stderr, exit: os.Exit}
)

// Init configures the global handler.
func Init(logToConsole, exitOnCritical, recoveryEnabled bool) {
	mu.Lock()
	defer mu.Unlock()

	h.logToConsole = logToConsole
	h.exitOnCritical = exitOnCritical
	h.recoveryEnabled = recoveryEnabled
}

// HandleError logs a non-fatal error with context.
func HandleError(err error, context string) {
	if err == nil {
		return
	}
	logging.Error("%s: %v", context, err)
	h.print("Error: %s: %v\n", context, err)
}

// HandleCriticalError logs an error the caller cannot continue from and
// exits with status 1 when exitOnCritical is set.
func HandleCriticalError(err error, context string) {
	if err == nil {
		return
	}
	logging.Error("CRITICAL: %s: %v", context, err)
	if id := logging.RunID(); id != "" {
		h.print("Critical error: %s: %v (see log, run %s)\n", context, err, id)
	} else {
		h.print("Critical error: %s: %v\n", context, err)
	}

	mu.Lock()
	exit, doExit := h.exit, h.exitOnCritical
	mu.Unlock()
	if doExit {
		exit(1)
	}
}

// HandlePanic recovers a panic in the calling goroutine and logs it with a stack trace.
// It must be called directly via defer.
func HandlePanic() {
	mu.Lock()
	enabled := h.recoveryEnabled
	mu.Unlock()
	if !enabled {
		return
	}

	if r := recover(); r != nil {
		logging.Error("PANIC recovered: %v\n%s", r, debug.Stack())
		h.print("Unexpected error: %v\n", r)
	}
}

func (h *handler) print(format string, args ...interface{}) {
	mu.Lock()
	w, on := h.console, h.logToConsole
	mu.Unlock()
	if on && w != nil {
		fmt.Fprintf(w, format, args...)
	}
}
