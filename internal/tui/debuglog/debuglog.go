// ABOUTME: File-backed slog logger for the TUI
// ABOUTME: Keeps client and screen logs off the terminal while it is in alt-screen mode

package debuglog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gadibarra/panel-municipal/internal/logger"
)

// FileName is the log file created inside the directory passed to Init.
const FileName = "tui-debug.log"

var (
	logFile *os.File
	current = logger.Discard()
	mu      sync.Mutex
)

// Init opens dir/FileName for appending and routes Logger() there at the
// given level. An empty dir disables logging.
func Init(dir, level string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening debug log: %w", err)
	}

	logFile = f
	current = logger.New(f, level, "text")
	return nil
}

// Close closes the log file and disables logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	current = logger.Discard()
}

// Logger returns the active file logger, or a discarding one.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Error logs err with the operation that produced it.
func Error(op string, err error) {
	if err == nil {
		return
	}
	Logger().Error("TUI operation failed", "op", op, "error", err)
}
