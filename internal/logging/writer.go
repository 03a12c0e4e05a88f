package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter implements io.Writer with size-based rotation.
//
// A docfind build is a single short-lived process, not a long-running
// daemon, so there is no value in keeping a deep chain of numbered
// generations around: one prior run's log (path+".1") is enough to compare
// against a failed build without the log directory accumulating files
// across repeated `docfind build` invocations. keepBackup lets a caller
// opt out of even that single backup.
type RotatingWriter struct {
	path       string
	maxSize    int64
	keepBackup bool

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool // Sync after each write so a tailing reader sees lines immediately
}

// NewRotatingWriter creates a new rotating log writer.
// maxSizeMB is the maximum size in megabytes before rotation. keepBackup
// controls whether the displaced log is kept as path+".1" (true) or
// discarded (false) when rotation happens.
func NewRotatingWriter(path string, maxSizeMB int, keepBackup bool) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:          path,
		maxSize:       int64(maxSizeMB) * 1024 * 1024,
		keepBackup:    keepBackup,
		immediateSync: true,
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if err := w.openFile(); err != nil {
		return nil, err
	}

	return w, nil
}

// SetImmediateSync enables or disables immediate sync after each write.
// When disabled, logs may be buffered for better performance.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write implements io.Writer with automatic rotation.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			// Continue writing to the current file if rotation fails; a
			// build's log is diagnostic, not worth failing the build over.
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err = w.file.Write(p)
	w.written += int64(n)

	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}

	return
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

// openFile opens or creates the log file.
func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotate closes the current file, optionally preserves it as a single
// path+".1" backup, and opens a fresh file at path.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	if _, err := os.Stat(w.path); err == nil {
		if w.keepBackup {
			backup := w.path + ".1"
			_ = os.Remove(backup) // displace any older backup
			if err := os.Rename(w.path, backup); err != nil {
				return fmt.Errorf("failed to rotate log file: %w", err)
			}
		} else if err := os.Remove(w.path); err != nil {
			return fmt.Errorf("failed to discard log file: %w", err)
		}
	}

	w.written = 0
	return w.openFile()
}
