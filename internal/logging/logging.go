// ABOUTME: Package-level printf logger used across the tool.
// ABOUTME: Backed by decred/slog writing to a rotating log file and optionally stderr.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem is the slog subsystem tag written on every line.
const Subsystem = "ADMG"

var (
	mu      sync.Mutex
	log     = slog.Disabled
	bknd    *backend
	prefix  string
	runID   string
	maxLogs = 3
)

type backend struct {
	mu      sync.Mutex
	rotator *rotator.Rotator
	echo    io.Writer
}

func (b *backend) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.echo != nil {
		b.echo.Write(p)
	}
	if b.rotator != nil {
		if _, err := b.rotator.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (b *backend) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rotator == nil {
		return nil
	}
	err := b.rotator.Close()
	b.rotator = nil
	return err
}

// InitLogger starts logging at level to logFile (rotated) and, if echo is
// non-nil, to echo. An empty logFile disables the file. It returns the
// underlying slog logger.
func InitLogger(logFile, level string, echo io.Writer) (slog.Logger, error) {
	lvl := slog.LevelInfo
	if level != "" {
		var ok bool
		lvl, ok = slog.LevelFromString(level)
		if !ok {
			return nil, fmt.Errorf("invalid log level: %s", level)
		}
	}

	b := &backend{echo: echo}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		r, err := rotator.New(logFile, 1024, false, maxLogs)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
		b.rotator = r
	}

	l := slog.NewBackend(b).Logger(Subsystem)
	l.SetLevel(lvl)

	mu.Lock()
	old := bknd
	bknd = b
	log = l
	runID = uuid.NewString()[:8]
	mu.Unlock()

	if old != nil {
		_ = old.close()
	}
	return l, nil
}

// Close flushes and closes the log file. Later calls are discarded.
func Close() error {
	mu.Lock()
	b := bknd
	bknd = nil
	log = slog.Disabled
	mu.Unlock()

	if b == nil {
		return nil
	}
	return b.close()
}

// SetPrefix sets a tag prepended to every message, e.g. "PID:1234".
func SetPrefix(p string) {
	mu.Lock()
	prefix = p
	mu.Unlock()
}

// RunID returns the id of the current logger session, or "" before InitLogger.
func RunID() string {
	mu.Lock()
	defer mu.Unlock()
	return runID
}

func Debug(format string, args ...interface{}) {
	current().Debugf("%s", msg(format, args))
}

func Info(format string, args ...interface{}) {
	current().Infof("%s", msg(format, args))
}

func Warn(format string, args ...interface{}) {
	current().Warnf("%s", msg(format, args))
}

func Error(format string, args ...interface{}) {
	current().Errorf("%s", msg(format, args))
}

func current() slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}

func msg(format string, args []interface{}) string {
	mu.Lock()
	p, id := prefix, runID
	mu.Unlock()

	m := fmt.Sprintf(format, args...)
	switch {
	case p != "" && id != "":
		return fmt.Sprintf("[%s run:%s] %s", p, id, m)
	case id != "":
		return fmt.Sprintf("[run:%s] %s", id, m)
	case p != "":
		return fmt.Sprintf("[%s] %s", p, m)
	}
	return m
}
