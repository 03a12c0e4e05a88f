package logging

import (
	"os"
	"path/filepath"

	dferrors "github.com/docfind-go/docfind/internal/errors"
)

// DefaultLogDir returns the default log directory (~/.docfind/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".docfind", "logs")
	}
	return filepath.Join(home, ".docfind", "logs")
}

// DefaultLogPath returns the default build log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "build.log")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	dir := DefaultLogDir()
	return os.MkdirAll(dir, 0o755)
}

// FindLogFile resolves the build log file to read, preferring an explicit
// path over the default build log location.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", dferrors.InputMalformed("log file not found", nil).WithDetail("path", explicit)
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", dferrors.InputMalformed("no log file found; run docfind build --debug first", nil).
		WithDetail("expected_path", path)
}
