// Package buildlock guards a build's output directory with a cross-process
// file lock, so two docfind invocations never write docfind.js/
// docfind_bg.wasm into the same directory concurrently.
package buildlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock provides cross-process exclusive locking over an output directory
// using gofrs/flock. It works on Unix, macOS and Windows alike.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a lock for the given output directory. The lock file is
// created at <dir>/.docfind-build.lock.
func New(dir string) *Lock {
	lockPath := filepath.Join(dir, ".docfind-build.lock")
	return &Lock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires an exclusive lock, blocking until it is available. The
// output directory is created if it doesn't already exist.
func (l *Lock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire output directory lock: %w", err)
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking, reporting whether
// another build already holds it.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create output directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire output directory lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call multiple times or when unlocked.
func (l *Lock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return fmt.Errorf("failed to release output directory lock: %w", err)
	}
	l.locked = false
	return nil
}

// Path returns the path to the lock file.
func (l *Lock) Path() string {
	return l.path
}

// IsLocked reports whether this Lock currently holds the lock.
func (l *Lock) IsLocked() bool {
	return l.locked
}
